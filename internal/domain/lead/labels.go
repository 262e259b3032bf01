package lead

import "fmt"

var statusLabels = map[Status]string{
	StatusNew:        "Новый",
	StatusInProgress: "В работе",
	StatusContacted:  "Связались",
	StatusClosed:     "Закрыт",
	StatusLost:       "Потерян",
}

var priorityLabels = map[Priority]string{
	PriorityLow:    "Низкий",
	PriorityNormal: "Обычный",
	PriorityHigh:   "Высокий",
	PriorityUrgent: "Срочный",
}

var sourceLabels = map[Source]string{
	SourceChat:     "Чат",
	SourceTelegram: "Telegram",
	SourcePhone:    "Телефон",
	SourceEmail:    "Email",
	SourceOther:    "Другое",
}

var taskStatusLabels = map[TaskStatus]string{
	TaskPending:    "Ожидает",
	TaskInProgress: "В работе",
	TaskCompleted:  "Выполнена",
}

var taskTypeLabels = map[string]string{
	"contact":         "Связаться",
	"register_lead":   "Оформить лида",
	"car_preferences": "Выборка машин",
	"region":          "Регион",
	"budget":          "Бюджет",
	"additional_info": "Доп. информация",
}

func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

func (p Priority) Label() string {
	if l, ok := priorityLabels[p]; ok {
		return l
	}
	return string(p)
}

func (s Source) Label() string {
	if l, ok := sourceLabels[s]; ok {
		return l
	}
	return string(s)
}

func (s TaskStatus) Label() string {
	if l, ok := taskStatusLabels[s]; ok {
		return l
	}
	return string(s)
}

// TaskTypeLabel returns the Russian title of a task type.
func TaskTypeLabel(taskType string) string {
	if l, ok := taskTypeLabels[taskType]; ok {
		return l
	}
	return taskType
}

// ScoreClass buckets a lead score: high from 80, medium from 50.
func ScoreClass(score int) string {
	switch {
	case score >= 80:
		return "high"
	case score >= 50:
		return "medium"
	default:
		return "low"
	}
}

// FormatFileSize renders bytes as B, KB or MB with two decimals.
func FormatFileSize(size int64) string {
	switch {
	case size < 1024:
		return fmt.Sprintf("%d B", size)
	case size < 1024*1024:
		return fmt.Sprintf("%.2f KB", float64(size)/1024)
	default:
		return fmt.Sprintf("%.2f MB", float64(size)/(1024*1024))
	}
}
