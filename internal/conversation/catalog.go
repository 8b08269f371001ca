package conversation

import "fmt"

// operatorLanguage is the fixed locale of every operator-facing text.
const operatorLanguage = "ru"

// Catalog maps message keys to printf templates per language. Missing keys
// fall back to Russian.
type Catalog map[string]map[string]string

// T renders key in lang.
func (c Catalog) T(lang, key string, args ...any) string {
	tmpl, ok := c[lang][key]
	if !ok {
		tmpl, ok = c[operatorLanguage][key]
	}
	if !ok {
		return key
	}
	if len(args) == 0 {
		return tmpl
	}
	return fmt.Sprintf(tmpl, args...)
}

var languageNames = map[string]string{"ru": "Русский", "en": "English"}

// DefaultCatalog returns the bundled texts.
func DefaultCatalog() Catalog {
	return Catalog{
		"ru": {
			"mainMenuPrompt":               "✨ Выберите действие в меню ниже.",
			"complaintButton":              "🆘 Жалоба",
			"settingsButton":               "⚙️ Настройки",
			"coldButton":                   "🧊 Холодные профили",
			"complaintPrompt":              "📞 Выберите линию, чтобы оставить жалобу:",
			"complaintLineChosen":          "🔎 Линия %s выбрана! Опишите проблему одним сообщением 👇",
			"complaintChooseSip":           "📟 Выберите конкретный номер из диапазона %s",
			"complaintSipReminder":         "📟 Пожалуйста, выберите конкретный номер с помощью кнопок ниже.",
			"complaintSipChosen":           "🎉 Номер %s выбран для линии %s! Опишите проблему одним сообщением 👇",
			"complaintSipInvalid":          "⚠️ Выберите номер из списка.",
			"complaintSent":                "✅ Жалоба отправлена! Спасибо за обратную связь 🙏",
			"complaintError":               "⚠️ Не удалось отправить жалобу. Сообщите администратору.",
			"complaintCancelButton":        "❌ Отмена",
			"complaintCancelled":           "✅ Жалоба отменена. Возвращаем вас в главное меню.",
			"lineReminder":                 "📞 Пожалуйста, выберите линию с помощью кнопок.",
			"notActive":                    "⏳ Ваша заявка ещё на рассмотрении. Ждите решения, пожалуйста.",
			"declined":                     "❌ Ваша заявка отклонена. Свяжитесь с администратором для уточнения.",
			"notLinked":                    "🔗 Вы пока не привязаны ни к одной линии. Напишите администратору.",
			"banned":                       "⛔️ Доступ заблокирован. Обратитесь к администратору.",
			"pendingApplied":               "📝 Ваша заявка отправлена на модерацию. Ожидайте ответа 💬",
			"alreadyPending":               "📝 Ваша заявка уже в обработке. Ожидайте, пожалуйста.",
			"languagePrompt":               "🌐 Выберите язык интерфейса / Choose your interface language:",
			"languageReminder":             "🌐 Пожалуйста, выберите язык с помощью кнопок ниже.\n🌍 Please choose a language using the buttons below.",
			"languageConfirmed":            "✅ Язык интерфейса: %s!",
			"stopWork":                     "🚧 %s",
			"stopWorkUntil":                "\n🗓 Доступ откроется после: %s",
			"muteActive":                   "🔇 Вы временно не можете отправлять сообщения. Мут до: %s",
			"noAccessLine":                 "🚫 Нет доступа к указанной линии.",
			"lineNotConfigured":            "⚠️ Для этой линии не настроена группа логов. Жалоба не отправлена.",
			"lineMissing":                  "❗️ Линия не найдена. Свяжитесь с администратором.",
			"applicationApprovedUser":      "🎉 Ваша заявка одобрена! Вы привязаны к линии %s.",
			"backButton":                   "⬅️ Назад",
			"settingsPrompt":               "⚙️ Настройки. Выберите действие ниже:",
			"settingsChangeLanguageOption": "🌐 Сменить язык",
			"settingsInstructionsOption":   "📘 Инструкция",
			"settingsInstructions":         "ℹ️ Как оставить жалобу:\n1️⃣ Нажмите «🆘 Жалоба».\n2️⃣ Выберите линию и, если требуется, конкретный номер.\n3️⃣ Опишите проблему одним сообщением — администраторы получат его в рабочем чате.\n\nТакже в разделе настроек вы всегда можете сменить язык интерфейса.",
			"userNotFound":                 "Пользователь не найден. Нажмите /start.",
			"genericError":                 "⚠️ Произошла ошибка. Попробуйте позже.",
			"notFound":                     "❗️ Объект не найден.",
			"invalidInput":                 "⚠️ Некорректный ввод.",
			"conflict":                     "⚠️ Конфликт: %s",
			"menuReminder":                 "🔁 Используйте кнопки меню.",
			"cancelled":                    "✅ Действие отменено.",

			"coldMenu":            "🧊 Ваши холодные профили:",
			"coldMenuEmpty":       "🧊 У вас пока нет холодных профилей.",
			"coldNewButton":       "➕ Новый профиль",
			"coldProfileLabel":    "@%s • %s • %s",
			"coldEditButton":      "✏️ %s",
			"coldDeleteButton":    "🗑 %s",
			"coldChooseLine":      "📞 Выберите линию для профиля:",
			"coldChooseSip":       "📟 Выберите номер для профиля на линии %s:",
			"coldSipManual":       "🔢 Введите номер (SIP) для профиля на линии %s:",
			"coldSipInvalid":      "⚠️ Номер должен состоять из цифр.",
			"coldUsernamePrompt":  "👤 Отправьте username аккаунта (например, @operator_01).",
			"coldUsernameInvalid": "⚠️ Username: 3–32 символа, латиница, цифры и _.",
			"coldSaved":           "✅ Профиль @%s сохранён (линия %s, номер %s).",
			"coldDeleted":         "🗑 Профиль удалён.",

			"adminPanel":                          "📋 Панель администратора.",
			"adminUseMenu":                        "🛠 Используйте /admin для панели.",
			"adminApplications":                   "📥 Заявки",
			"adminLines":                          "📞 Линии",
			"adminUsers":                          "👥 Пользователи",
			"adminStats":                          "📊 Статистика",
			"adminSipStats":                       "📟 Статистика SIP",
			"adminStopWork":                       "🚧 Стоп-ворк",
			"adminSettings":                       "⚙️ Настройки",
			"adminCold":                           "🧊 Загрузка профилей",
			"newApplication":                      "🚨 Новая заявка!\n🙋‍♂️ Пользователь: %s\n🆔 ID заявки: %s\n⚙️ Выберите действие:",
			"applicationDecline":                  "❌ Отклонить",
			"applicationConfirm":                  "✅ Подтвердить",
			"adminAwaitLineId":                    "🔢 Введите ID линии для пользователя %s.",
			"applicationApprovedAdmin":            "✅ Пользователь привязан к линии %s.",
			"applicationDeclinedAdmin":            "❌ Заявка отклонена: %s",
			"pendingApplicationsEmpty":            "✨ Нет активных заявок.",
			"pendingApplicationsList":             "📥 Ожидающие заявки:",
			"linesMenu":                           "📞 Управление линиями.",
			"linesCreate":                         "➕ Создать линию",
			"linesList":                           "📜 Список линий",
			"linesAttach":                         "🔗 Привязать пользователя",
			"linesDetach":                         "✂️ Отвязать пользователя",
			"linesSetGroup":                       "📡 Назначить группу логов",
			"linesListEmpty":                      "📭 Линии ещё не созданы.",
			"lineListItem":                        "• %s (#%s) — участников: %d, группа: %s",
			"lineCreated":                         "🆕 Линия %s создана.",
			"waitingForLineIdFormat":              "ℹ️ Укажите ID линии. Пример: 101;Support",
			"attachUserFormat":                    "ℹ️ Формат: userId;lineId",
			"setGroupFormat":                      "ℹ️ Формат: lineId;chatId. Можно переслать сообщение из группы.",
			"attachedUser":                        "🔗 %s привязан к линии %s.",
			"detachedUser":                        "✂️ Пользователь %d отвязан от линии %s.",
			"lineGroupSet":                        "📡 Для линии %s установлен чат %d.",
			"usersMenu":                           "👥 Управление пользователями.",
			"usersList":                           "📋 Список пользователей",
			"usersBan":                            "⛔️ Бан",
			"usersMute":                           "🔇 Мут",
			"usersUnmute":                         "🔊 Снять мут",
			"usersListEmpty":                      "📭 Пользователей пока нет.",
			"usersPage":                           "👥 Пользователи (страница %d/%d)\nВсего: %d • Активных: %d • На модерации: %d • Забанено: %d",
			"usersPrev":                           "⬅️ Предыдущие",
			"usersNext":                           "Следующие ➡️",
			"usersToList":                         "⬅️ К списку",
			"userDetails":                         "🙋‍♂️ %s\n📊 Статус: %s\n🌐 Язык: %s\n🔇 Мут до: %s\n📞 Линии: %s",
			"userActivate":                        "✅ Активировать",
			"userBanButton":                       "⛔️ Забанить",
			"userMuteHours":                       "🔇 Мут %dч",
			"adminUsersStatusUpdated":             "✅ Статус пользователя обновлён.",
			"adminUsersStatusUnchanged":           "ℹ️ Статус уже установлен.",
			"banPrompt":                           "🔢 Отправьте userId для бана.",
			"mutePrompt":                          "🔢 Отправьте userId и часы мута через точку с запятой (пример: 12345;2).",
			"unmutePrompt":                        "🔢 Отправьте userId;0 чтобы снять мут.",
			"bannedUser":                          "⛔️ Пользователь %d забанен.",
			"muted":                               "🔇 Пользователь %d замьючен на %s ч.",
			"muteRemoved":                         "🔊 Мут для пользователя %d снят.",
			"stats":                               "👥 Всего пользователей: %d\n🟢 Активных: %d\n⛔️ Забаненных: %d\n📞 Всего линий: %d\n⏳ Ожидающих заявок: %d\n🆘 Жалоб: %d (новых: %d)\n🧊 Холодных профилей: %d",
			"sipStatsEmpty":                       "📭 Жалоб пока нет.",
			"sipStatsHeader":                      "📟 Статистика по номерам:",
			"sipStatsRow":                         "• %s / %s — всего %d, решено %d, отменено %d",
			"stopWorkStatus":                      "🚧 Стоп-ворк: %s",
			"stopWorkStatusUntil":                 "\n🗓 До: %s",
			"stopWorkStatusMessage":               "\n💬 Сообщение: %s",
			"stopWorkOn":                          "активен",
			"stopWorkOff":                         "выключен",
			"stopWorkEnable":                      "🚧 Включить",
			"stopWorkDisable":                     "✅ Отключить",
			"stopWorkPrompt":                      "🕒 Отправьте дату и текст: YYYY-MM-DD HH:MM;Сообщение (дата опциональна).",
			"stopWorkActivated":                   "🚧 Стоп-ворк активирован.",
			"stopWorkDisabled":                    "✅ Стоп-ворк отключён.",
			"adminSettingsTitle":                  "⚙️ Настройки администратора.",
			"adminSettingsStopWorkMessageButton":  "✏️ Сообщение стоп-ворка",
			"adminSettingsShowConfigButton":       "📄 Текущая конфигурация",
			"adminSettingsStopWorkMessagePrompt":  "💬 Отправьте текст сообщения стоп-ворка по умолчанию. Чтобы сбросить, отправьте \"-\".",
			"adminSettingsStopWorkMessageUpdated": "✅ Сообщение стоп-ворка по умолчанию обновлено.\nℹ️ Текущее сообщение: %s",
			"adminSettingsConfig":                 "⚙️ Текущие настройки:\n🚧 Стоп-ворк: %s\n🗓 До: %s\n💬 Сообщение стоп-ворка: %s\n💬 Сообщение по умолчанию: %s",
			"coldBulkChooseLine":                  "🧊 Выберите линию для загрузки профилей:",
			"coldBulkPrompt":                      "📄 Отправьте профили для линии %s, по одному в строке: sip;username",
			"coldBulkResult":                      "✅ Обработано: %d, создано: %d, обновлено: %d, пропущено: %d.",
			"complaintLogTitle":                   "🚨 Жалоба от %s\n📞 Линия: %s",
			"complaintLogSip":                     "📟 SIP: %s",
			"complaintLogCold":                    "🧊 Холодный профиль: @%s",
			"complaintLogMessageLabel":            "📝 Сообщение:",
			"complaintLogResolveButton":           "✅ Решено",
			"complaintLogCancelButton":            "❌ Отменить",
			"complaintLogResolvedNote":            "✅ Решено администратором: %s",
			"complaintLogCancelledNote":           "❌ Отменено администратором: %s",
			"complaintLogStatusUpdated":           "✅ Статус жалобы обновлён.",
			"complaintLogStatusAlreadySet":        "ℹ️ Статус уже установлен.",
			"complaintLogNoAccess":                "🚫 Нет доступа.",
			"statusActive":                        "Активен",
			"statusPending":                       "На модерации",
			"statusBanned":                        "Забанен",
			"statusDeclined":                      "Отклонён",
		},
		"en": {
			"mainMenuPrompt":               "✨ Choose an option from the menu below.",
			"complaintButton":              "🆘 Complaint",
			"settingsButton":               "⚙️ Settings",
			"coldButton":                   "🧊 Cold profiles",
			"complaintPrompt":              "📞 Choose a line to file a complaint:",
			"complaintLineChosen":          "🔎 Line %s selected! Describe the issue in one message 👇",
			"complaintChooseSip":           "📟 Choose a specific number from %s",
			"complaintSipReminder":         "📟 Please choose a number using the buttons below.",
			"complaintSipChosen":           "🎉 Number %s selected for line %s! Describe the issue in one message 👇",
			"complaintSipInvalid":          "⚠️ Choose a number from the list.",
			"complaintSent":                "✅ Complaint sent! Thank you for the feedback 🙏",
			"complaintError":               "⚠️ Failed to send the complaint. Please notify an admin.",
			"complaintCancelButton":        "❌ Cancel",
			"complaintCancelled":           "✅ Complaint cancelled. Back to the main menu.",
			"lineReminder":                 "📞 Please choose a line using the buttons.",
			"notActive":                    "⏳ Your application is still under review. Please wait.",
			"declined":                     "❌ Your application was declined. Contact an admin for details.",
			"notLinked":                    "🔗 You are not linked to any line yet. Contact an admin.",
			"banned":                       "⛔️ Access denied. Contact an administrator.",
			"pendingApplied":               "📝 Your application was submitted for moderation. Please wait 💬",
			"alreadyPending":               "📝 Your application is already being processed. Please wait.",
			"languagePrompt":               "🌐 Choose your interface language:",
			"languageReminder":             "🌐 Please pick a language using the buttons below.",
			"languageConfirmed":            "✅ Interface language set to %s!",
			"stopWork":                     "🚧 %s",
			"stopWorkUntil":                "\n🗓 Access reopens after: %s",
			"muteActive":                   "🔇 You cannot send messages for now. Muted until: %s",
			"noAccessLine":                 "🚫 You have no access to this line.",
			"lineNotConfigured":            "⚠️ No log group is configured for this line. Complaint not sent.",
			"lineMissing":                  "❗️ Line not found. Contact an admin.",
			"applicationApprovedUser":      "🎉 Your application was approved! You are linked to line %s.",
			"backButton":                   "⬅️ Back",
			"settingsPrompt":               "⚙️ Settings. Choose an action below:",
			"settingsChangeLanguageOption": "🌐 Change language",
			"settingsInstructionsOption":   "📘 Instructions",
			"settingsInstructions":         "ℹ️ How to file a complaint:\n1️⃣ Press «🆘 Complaint».\n2️⃣ Choose a line and, if needed, a specific number.\n3️⃣ Describe the issue in one message; admins will get it in the work chat.\n\nYou can always switch the interface language from the settings menu.",
			"userNotFound":                 "User not found. Press /start.",
			"genericError":                 "⚠️ Something went wrong. Please try again later.",
			"notFound":                     "❗️ Not found.",
			"invalidInput":                 "⚠️ Invalid input.",
			"conflict":                     "⚠️ Conflict: %s",
			"menuReminder":                 "🔁 Please use the menu buttons.",
			"cancelled":                    "✅ Cancelled.",
			"coldMenu":                     "🧊 Your cold profiles:",
			"coldMenuEmpty":                "🧊 You have no cold profiles yet.",
			"coldNewButton":                "➕ New profile",
			"coldChooseLine":               "📞 Choose a line for the profile:",
			"coldChooseSip":                "📟 Choose a number for the profile on line %s:",
			"coldSipManual":                "🔢 Enter the number (SIP) for the profile on line %s:",
			"coldSipInvalid":               "⚠️ The number must consist of digits.",
			"coldUsernamePrompt":           "👤 Send the account username (e.g. @operator_01).",
			"coldUsernameInvalid":          "⚠️ Username: 3–32 characters, latin letters, digits and _.",
			"coldSaved":                    "✅ Profile @%s saved (line %s, number %s).",
			"coldDeleted":                  "🗑 Profile deleted.",
		},
	}
}
