package loader

import (
	"errors"
	"fmt"
)

// ErrEmptyInput возвращается, когда после загрузки не осталось ни одного события
var ErrEmptyInput = errors.New("no events loaded")

// MalformedRecordError одна нечитаемая запись. Загрузка при этом продолжается.
type MalformedRecordError struct {
	Source string
	Record int
	Raw    string
	Err    error
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("%s: malformed record %d: %v", e.Source, e.Record, e.Err)
}

func (e *MalformedRecordError) Unwrap() error {
	return e.Err
}

// InvalidDocumentShapeError документ не является ни списком событий,
// ни объектом с ключом events
type InvalidDocumentShapeError struct {
	Source string
	Reason string
}

func (e *InvalidDocumentShapeError) Error() string {
	return fmt.Sprintf("%s: invalid document shape: %s", e.Source, e.Reason)
}
