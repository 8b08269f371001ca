package conversation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-bot/internal/domain"
	"github.com/spec-kit/helpdesk-bot/internal/events"
	"github.com/spec-kit/helpdesk-bot/internal/observability"
	"github.com/spec-kit/helpdesk-bot/internal/policy"
	"github.com/spec-kit/helpdesk-bot/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-bot/pkg/util/errorutil"
)

// Deps bundles the orchestrator's collaborators.
type Deps struct {
	Store                   *repository.Store
	Slots                   *Slots
	Gateway                 Gateway
	Dispatcher              events.Dispatcher
	Catalog                 Catalog
	OperatorIDs             []int64
	FallbackStopWorkMessage string
	Now                     func() time.Time
	Location                *time.Location
	Logger                  *zap.Logger
	Metrics                 *observability.Metrics
}

// Orchestrator turns inbound events into store mutations and outbound intents.
type Orchestrator struct {
	store       *repository.Store
	slots       *Slots
	gateway     Gateway
	dispatcher  events.Dispatcher
	catalog     Catalog
	operators   map[int64]bool
	operatorIDs []int64
	fallback    string
	now         func() time.Time
	location    *time.Location
	logger      *zap.Logger
	metrics     *observability.Metrics
}

// New wires an Orchestrator.
func New(deps Deps) *Orchestrator {
	o := &Orchestrator{
		store:       deps.Store,
		slots:       deps.Slots,
		gateway:     deps.Gateway,
		dispatcher:  deps.Dispatcher,
		catalog:     deps.Catalog,
		operators:   make(map[int64]bool, len(deps.OperatorIDs)),
		operatorIDs: append([]int64{}, deps.OperatorIDs...),
		fallback:    deps.FallbackStopWorkMessage,
		now:         deps.Now,
		location:    deps.Location,
		logger:      deps.Logger,
		metrics:     deps.Metrics,
	}
	for _, id := range deps.OperatorIDs {
		o.operators[id] = true
	}
	if o.slots == nil {
		o.slots = NewSlots()
	}
	if o.catalog == nil {
		o.catalog = DefaultCatalog()
	}
	if o.dispatcher == nil {
		o.dispatcher = events.NewInMemoryDispatcher(deps.Logger)
	}
	if o.now == nil {
		o.now = time.Now
	}
	if o.location == nil {
		o.location = time.Local
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return o
}

// IsOperator reports whether id is a configured operator.
func (o *Orchestrator) IsOperator(id int64) bool {
	return o.operators[id]
}

// Slots exposes the slot table, mainly for inspection in tests.
func (o *Orchestrator) Slots() *Slots {
	return o.slots
}

// Handle processes one inbound event. Failures are reported to the actor and
// logged; the returned error is non-nil only when even that report could not
// be delivered.
func (o *Orchestrator) Handle(ctx context.Context, ev Event) error {
	ns := UserNamespace
	var err error
	if o.IsOperator(ev.Actor()) {
		ns = OperatorNamespace
		err = o.handleOperator(ctx, ev)
	} else {
		err = o.handleUser(ctx, ev)
	}
	if err == nil {
		o.metrics.RecordEvent(ev.Kind(), "ok")
		return nil
	}
	return o.fail(ctx, ns, ev, err)
}

func (o *Orchestrator) fail(ctx context.Context, ns Namespace, ev Event, err error) error {
	actor := ev.Actor()
	kind := apperrors.KindOf(err)
	o.metrics.RecordEvent(ev.Kind(), string(kind))

	st := o.slots.Get(ns, actor)
	lang := operatorLanguage
	if ns == UserNamespace {
		lang = userLanguage(o.store.FindUser(actor))
	}
	fields := []zap.Field{
		zap.Int64("actor_id", actor),
		zap.String("event", ev.Kind()),
		zap.String("state", StateName(st)),
		zap.String("kind", string(kind)),
		zap.Error(err),
	}

	var text string
	switch kind {
	case apperrors.KindNotFound:
		o.logger.Info("event target not found", fields...)
		o.slots.Clear(ns, actor)
		text = o.catalog.T(lang, "notFound")
	case apperrors.KindForbidden:
		o.logger.Info("event forbidden", fields...)
		text = o.catalog.T(lang, "noAccessLine")
	case apperrors.KindInvalidInput:
		o.logger.Info("event rejected", fields...)
		text = o.formatHint(lang, st)
	case apperrors.KindConflict:
		o.logger.Info("event conflicted", fields...)
		text = o.catalog.T(lang, "conflict", apperrors.ToDomainError(err).Message)
	default:
		o.logger.Error("event handling failed", fields...)
		text = o.catalog.T(lang, "genericError")
	}

	if _, derr := o.reply(ctx, actor, text, nil); derr != nil {
		return fmt.Errorf("report %s failure: %w", kind, derr)
	}
	return nil
}

// formatHint picks the most specific correction for the state the actor is in.
func (o *Orchestrator) formatHint(lang string, st State) string {
	switch s := st.(type) {
	case AwaitingLineCreation:
		return o.catalog.T(lang, "waitingForLineIdFormat")
	case AwaitingUserLineAttach, AwaitingUserLineDetach:
		return o.catalog.T(lang, "attachUserFormat")
	case AwaitingLineGroupBinding:
		return o.catalog.T(lang, "setGroupFormat")
	case AwaitingBanTarget:
		return o.catalog.T(lang, "banPrompt")
	case AwaitingMuteTarget:
		return o.catalog.T(lang, "mutePrompt")
	case AwaitingStopWorkActivation:
		return o.catalog.T(lang, "stopWorkPrompt")
	case AwaitingColdBulkUpload:
		return o.catalog.T(lang, "coldBulkPrompt", s.LineID)
	case AwaitingColdUsernameInput:
		return o.catalog.T(lang, "coldUsernameInvalid")
	case AwaitingColdSipManualInput:
		return o.catalog.T(lang, "coldSipInvalid")
	case AwaitingComplaintSipChoice, AwaitingColdSipChoice:
		return o.catalog.T(lang, "complaintSipInvalid")
	}
	return o.catalog.T(lang, "invalidInput")
}

func (o *Orchestrator) deliver(ctx context.Context, intent Intent) (MessageRef, error) {
	ref, err := o.gateway.Deliver(ctx, intent)
	if err != nil {
		return MessageRef{}, apperrors.NewInternalError(fmt.Errorf("deliver %s to %d: %w", intent.Kind, intent.ChatID, err))
	}
	return ref, nil
}

func (o *Orchestrator) reply(ctx context.Context, chatID int64, text string, kb *Keyboard) (MessageRef, error) {
	return o.deliver(ctx, Intent{Kind: IntentReply, ChatID: chatID, Text: text, Keyboard: kb})
}

func (o *Orchestrator) editLast(ctx context.Context, chatID int64, text string, kb *Keyboard) error {
	_, err := o.deliver(ctx, Intent{Kind: IntentEditLast, ChatID: chatID, Text: text, Keyboard: kb})
	return err
}

func (o *Orchestrator) notify(ctx context.Context, chatID int64, text string, kb *Keyboard) (MessageRef, error) {
	return o.deliver(ctx, Intent{Kind: IntentNotify, ChatID: chatID, Text: text, Keyboard: kb})
}

// notifyBestEffort sends a side notification whose failure must not undo
// the committed transition.
func (o *Orchestrator) notifyBestEffort(ctx context.Context, chatID int64, text string, kb *Keyboard) {
	if _, err := o.notify(ctx, chatID, text, kb); err != nil {
		o.logger.Warn("notification failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (o *Orchestrator) publish(ctx context.Context, eventType events.EventType, actor int64, subject string, payload interface{}) {
	o.metrics.RecordDomainEvent(string(eventType))
	_ = o.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		ActorID:   actor,
		Subject:   subject,
		Timestamp: o.now().UTC(),
		Payload:   payload,
	})
}

func (o *Orchestrator) formatTime(t *time.Time) string {
	if t == nil {
		return "—"
	}
	return t.In(o.location).Format("2006-01-02 15:04")
}

func userLanguage(u *domain.User) string {
	if code := u.LanguageCode(); domain.SupportedLanguage(code) {
		return code
	}
	return operatorLanguage
}

func identityOf(actor int64, from Sender) domain.Identity {
	return domain.Identity{
		ID:        actor,
		Username:  strings.TrimPrefix(from.Username, "@"),
		FirstName: from.FirstName,
		LastName:  from.LastName,
	}
}

// userLabel renders "@name | First Last | ID: n".
func userLabel(u *domain.User) string {
	parts := []string{}
	if name := u.UsernameValue(); name != "" {
		parts = append(parts, "@"+name)
	}
	full := strings.TrimSpace(strings.Join([]string{deref(u.FirstName), deref(u.LastName)}, " "))
	if full != "" {
		parts = append(parts, full)
	}
	parts = append(parts, fmt.Sprintf("ID: %d", u.ID))
	return strings.Join(parts, " | ")
}

func senderLabel(actor int64, from Sender) string {
	parts := []string{}
	if from.Username != "" {
		parts = append(parts, "@"+strings.TrimPrefix(from.Username, "@"))
	}
	if full := strings.TrimSpace(from.FirstName + " " + from.LastName); full != "" {
		parts = append(parts, full)
	}
	parts = append(parts, fmt.Sprintf("ID: %d", actor))
	return strings.Join(parts, " | ")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func lineLabel(l *domain.Line) string {
	return l.DisplayName()
}

func isCommand(text, command string) bool {
	fields := strings.Fields(text)
	return len(fields) > 0 && strings.EqualFold(fields[0], command)
}

// evaluateGates runs the policy chain, using the store's lazy mute expiry.
func (o *Orchestrator) evaluateGates(ctx context.Context, user *domain.User) (policy.Decision, error) {
	return policy.Evaluate(policy.Input{
		User:                    user,
		Settings:                o.store.GetSettings(),
		Now:                     o.now(),
		FallbackStopWorkMessage: o.fallback,
		Mute: func() (bool, *time.Time, error) {
			state, err := o.store.EnsureMuteExpiry(ctx, user.ID)
			return state.Muted, state.Until, err
		},
	})
}
