package lead

import "errors"

var (
	ErrLeadNotFound     = errors.New("lead not found")
	ErrTaskNotFound     = errors.New("task not found")
	ErrAlreadyConverted = errors.New("lead already converted")
	ErrNameRequired     = errors.New("Имя обязательно")
	ErrRequiredFields   = errors.New("required task fields are empty")
	ErrInvalidTaskData  = errors.New("task data does not match its schema")
	ErrInvalidStage     = errors.New("unknown pipeline stage")
)
