package loader

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/bashkirian/haulstats/pkg/models"
)

// DefaultSimulationDuration 72 часа в минутах. Используется для документа
// в виде голого списка, где длительность не указана.
const DefaultSimulationDuration = 4320.0

const maxLineSize = 4 * 1024 * 1024

// Format способ разбора входного файла
type Format string

const (
	FormatAuto     Format = "auto"
	FormatLines    Format = "lines"
	FormatDocument Format = "document"
)

// ParseFormat разбирает значение из конфига или query-параметра
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatAuto:
		return FormatAuto, nil
	case FormatLines, FormatDocument:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown input format %q", s)
	}
}

type Options struct {
	Format          Format
	DefaultDuration float64
}

// Result загруженные события и итоговая длительность симуляции
type Result struct {
	Events             []models.Event
	SimulationDuration float64
	Shape              models.InputShape
	Skipped            []*MalformedRecordError
}

type Loader struct {
	opts Options
}

func New(opts Options) *Loader {
	if opts.Format == "" {
		opts.Format = FormatAuto
	}
	if opts.DefaultDuration <= 0 {
		opts.DefaultDuration = DefaultSimulationDuration
	}
	return &Loader{opts: opts}
}

// Load читает журнал событий с диска
func (l *Loader) Load(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open event log: %w", err)
	}
	defer f.Close()

	return l.Decode(f, path)
}

// Decode разбирает журнал из произвольного источника. name используется
// только в диагностике.
func (l *Loader) Decode(r io.Reader, name string) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	format := l.opts.Format
	if format == FormatAuto {
		format, err = detectFormat(data, name)
		if err != nil {
			return nil, err
		}
	}

	var res *Result
	if format == FormatLines {
		res = l.decodeLines(data, name)
	} else {
		res, err = l.decodeDocument(data, name)
		if err != nil {
			return nil, err
		}
	}

	if len(res.Events) == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrEmptyInput)
	}
	return res, nil
}

func detectFormat(data []byte, name string) (Format, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return FormatLines, nil
	}

	switch trimmed[0] {
	case '[':
		if !json.Valid(trimmed) {
			// битая первая строка построчного журнала
			return FormatLines, nil
		}
		return FormatDocument, nil
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			// не один объект, значит построчный журнал
			return FormatLines, nil
		}
		if _, ok := obj["events"]; ok {
			return FormatDocument, nil
		}
		if _, ok := obj["truck_id"]; ok {
			return FormatLines, nil
		}
		return "", &InvalidDocumentShapeError{Source: name, Reason: "object has neither events nor truck_id"}
	default:
		if json.Valid(trimmed) {
			return "", &InvalidDocumentShapeError{Source: name, Reason: "top-level value is not a list or an object"}
		}
		return FormatLines, nil
	}
}

func (l *Loader) decodeLines(data []byte, name string) *Result {
	res := &Result{Shape: models.ShapeLines}

	reader := bufio.NewReader(bytes.NewReader(data))
	lineNo := 0
	for {
		raw, err := reader.ReadBytes('\n')
		if len(raw) > 0 {
			lineNo++
			res.decodeLine(bytes.TrimSpace(raw), lineNo, name)
		}
		if err != nil {
			// данные уже в памяти, кроме io.EOF ошибок здесь не бывает
			break
		}
	}

	res.SimulationDuration = maxEndTime(res.Events)
	return res
}

func (r *Result) decodeLine(line []byte, lineNo int, name string) {
	if len(line) == 0 {
		return
	}
	if len(line) > maxLineSize {
		r.skip(&MalformedRecordError{
			Source: name,
			Record: lineNo,
			Raw:    string(line[:64]) + "...",
			Err:    fmt.Errorf("line of %d bytes exceeds limit of %d", len(line), maxLineSize),
		})
		return
	}

	event, err := decodeRecord(line)
	if err != nil {
		r.skip(&MalformedRecordError{Source: name, Record: lineNo, Raw: string(line), Err: err})
		return
	}
	r.Events = append(r.Events, event)
}

type document struct {
	SimulationDuration *float64        `json:"simulation_duration"`
	Events             json.RawMessage `json:"events"`
}

func (l *Loader) decodeDocument(data []byte, name string) (*Result, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return &Result{Shape: models.ShapeDocument}, nil
	}

	var (
		raw      []json.RawMessage
		explicit bool
		res      = &Result{}
	)
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
		res.Shape = models.ShapeDocumentList
		res.SimulationDuration = l.opts.DefaultDuration
	case '{':
		var doc document
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
		if len(doc.Events) == 0 || bytes.Equal(doc.Events, []byte("null")) {
			return nil, &InvalidDocumentShapeError{Source: name, Reason: "object has no events list"}
		}
		if err := json.Unmarshal(doc.Events, &raw); err != nil {
			return nil, &InvalidDocumentShapeError{Source: name, Reason: "events is not a list"}
		}
		res.Shape = models.ShapeDocument
		if doc.SimulationDuration != nil {
			res.SimulationDuration = *doc.SimulationDuration
			explicit = true
		}
	default:
		return nil, &InvalidDocumentShapeError{Source: name, Reason: "top-level value is not a list or an object"}
	}

	for i, item := range raw {
		event, err := decodeRecord(item)
		if err != nil {
			res.skip(&MalformedRecordError{Source: name, Record: i + 1, Raw: string(item), Err: err})
			continue
		}
		res.Events = append(res.Events, event)
	}

	// объект без simulation_duration: берём длительность из данных
	if res.Shape == models.ShapeDocument && !explicit {
		res.SimulationDuration = maxEndTime(res.Events)
	}
	return res, nil
}

func decodeRecord(raw []byte) (models.Event, error) {
	var event models.Event
	if err := json.Unmarshal(raw, &event); err != nil {
		return models.Event{}, err
	}
	if err := event.Validate(); err != nil {
		return models.Event{}, err
	}
	return event, nil
}

func (r *Result) skip(err *MalformedRecordError) {
	log.Printf("[WARN] skipping record: %v", err)
	r.Skipped = append(r.Skipped, err)
}

func maxEndTime(events []models.Event) float64 {
	if len(events) == 0 {
		return 0
	}
	latest := events[0].EndTime
	for _, e := range events[1:] {
		if e.EndTime > latest {
			latest = e.EndTime
		}
	}
	return latest
}
