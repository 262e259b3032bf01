package pipeline

// Step is a funnel stage as rendered on the lead card.
type Step struct {
	Stage       Stage  `json:"stage"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Emoji       string `json:"emoji"`
	Timeframe   string `json:"timeframe"`
	Color       string `json:"color"`
	IsActive    bool   `json:"isActive"`
	IsCompleted bool   `json:"isCompleted"`
	IsCurrent   bool   `json:"isCurrent"`
}

// View is the whole funnel for one lead.
type View struct {
	Current      Stage  `json:"current"`
	CurrentTitle string `json:"currentTitle"`
	Progress     int    `json:"progress"`
	NextAction   string `json:"nextAction"`
	Steps        []Step `json:"steps"`
}

var stepTemplates = []Step{
	{Stage: NewLead, Title: "1. Новый лид", Description: "Лид только что создан в системе", Emoji: "🆕", Timeframe: "0 часов", Color: "#94a3b8"},
	{Stage: FirstContact, Title: "2. Первый контакт", Description: "Связаться с клиентом в течение 2 часов", Emoji: "📞", Timeframe: "0-2 часа", Color: "#3b82f6"},
	{Stage: Qualification, Title: "3. Квалификация", Description: "Собрать контактные данные и понять потребность", Emoji: "📋", Timeframe: "2-24 часа", Color: "#8b5cf6"},
	{Stage: NeedsAnalysis, Title: "4. Выявление потребностей", Description: "Узнать предпочтения, бюджет, регион, сроки", Emoji: "🔍", Timeframe: "1-3 дня", Color: "#06b6d4"},
	{Stage: Presentation, Title: "5. Презентация", Description: "Отправить подборку и расчеты", Emoji: "🚗", Timeframe: "3-7 дней", Color: "#10b981"},
	{Stage: Negotiation, Title: "6. Переговоры", Description: "Работа с возражениями, follow-up", Emoji: "💬", Timeframe: "7-14 дней", Color: "#f59e0b"},
	{Stage: DealClosing, Title: "7. Закрытие сделки", Description: "Договор, предоплата, подтверждение", Emoji: "📝", Timeframe: "14-30 дней", Color: "#ef4444"},
	{Stage: Won, Title: "✅ Успех", Description: "Сделка закрыта, клиент доволен", Emoji: "🎉", Timeframe: "Завершено", Color: "#10b981"},
	{Stage: Lost, Title: "❌ Отказ", Description: "Клиент отказался от покупки", Emoji: "😞", Timeframe: "Завершено", Color: "#64748b"},
}

var stageNames = map[Stage]string{
	NewLead:       "Новый лид",
	FirstContact:  "Первый контакт",
	Qualification: "Квалификация",
	NeedsAnalysis: "Выявление потребностей",
	Presentation:  "Презентация",
	Negotiation:   "Переговоры",
	DealClosing:   "Закрытие сделки",
	Won:           "Успех",
	Lost:          "Отказ",
}

var nextActions = map[Stage]string{
	NewLead:       "Позвонить клиенту в течение 2 часов",
	FirstContact:  "Собрать контактные данные и квалифицировать лид",
	Qualification: "Узнать предпочтения по автомобилям, бюджет, регион",
	NeedsAnalysis: "Подобрать 3-5 вариантов и отправить подборку",
	Presentation:  "Дождаться обратной связи, ответить на вопросы",
	Negotiation:   "Обработать возражения, назначить встречу",
	DealClosing:   "Отправить договор, получить предоплату",
	Won:           "Поздравляем! Сделка закрыта успешно 🎉",
	Lost:          "Проанализировать причину отказа",
}

// StageName returns the Russian name of s, or s itself when unknown.
func StageName(s Stage) string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return string(s)
}

// NextAction is the operator hint for the current stage.
func NextAction(s Stage) string {
	if a, ok := nextActions[s]; ok {
		return a
	}
	return "Продолжить работу с лидом"
}

// Steps marks each stage relative to current: active means at or before it,
// completed means strictly before it.
func Steps(current Stage) []Step {
	cur := Index(current)
	out := make([]Step, len(stepTemplates))
	for i, tpl := range stepTemplates {
		st := tpl
		st.IsActive = i <= cur
		st.IsCompleted = i < cur
		st.IsCurrent = tpl.Stage == current
		out[i] = st
	}
	return out
}

// Build assembles the full funnel view. An empty stage is treated as NewLead.
func Build(current Stage) View {
	if current == "" {
		current = NewLead
	}
	title := "Неизвестный этап"
	if idx := Index(current); idx >= 0 {
		title = stepTemplates[idx].Title
	}
	return View{
		Current:      current,
		CurrentTitle: title,
		Progress:     Progress(current),
		NextAction:   NextAction(current),
		Steps:        Steps(current),
	}
}
