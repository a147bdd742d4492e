package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Сырые типы событий, которые пишет симулятор
const (
	TypeMine            = "Mine"
	TypeTravel          = "Travel"
	TypeTravelToStation = "TravelToStation"
	TypeTravelToMine    = "TravelToMine"
	TypeQueue           = "Queue"
	TypeUnload          = "Unload"
)

// Category смысловая корзина, в которую попадает время события
type Category int

const (
	CategoryNone Category = iota
	CategoryMine
	CategoryTravel
	CategoryQueue
	CategoryUnload
)

func (c Category) String() string {
	switch c {
	case CategoryMine:
		return "mine"
	case CategoryTravel:
		return "travel"
	case CategoryQueue:
		return "queue"
	case CategoryUnload:
		return "unload"
	default:
		return "none"
	}
}

// CategoryOf сворачивает сырой тип в категорию. Все варианты поездки
// попадают в CategoryTravel, неизвестные типы дают CategoryNone.
func CategoryOf(eventType string) Category {
	switch eventType {
	case TypeMine:
		return CategoryMine
	case TypeTravel, TypeTravelToStation, TypeTravelToMine:
		return CategoryTravel
	case TypeQueue:
		return CategoryQueue
	case TypeUnload:
		return CategoryUnload
	default:
		return CategoryNone
	}
}

// EntityID идентификатор грузовика или станции. В логе он может быть
// числом или строкой, поэтому храним каноническую строку.
type EntityID string

func (id *EntityID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = EntityID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("entity id must be a number or a string, got %s", data)
	}
	*id = EntityID(canonicalNumber(n))
	return nil
}

func (id EntityID) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(id))
}

// 1, 1.0 и 1e0 должны давать один и тот же грузовик
func canonicalNumber(n json.Number) string {
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10)
	}
	if f, err := n.Float64(); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strings.TrimSpace(n.String())
}

// Event один интервал активности грузовика
type Event struct {
	TruckID   EntityID  `json:"truck_id"`
	Type      string    `json:"type"`
	StartTime float64   `json:"start_time"`
	EndTime   float64   `json:"end_time"`
	StationID *EntityID `json:"station_id,omitempty"`
}

// Duration длительность интервала
func (e Event) Duration() float64 {
	return e.EndTime - e.StartTime
}

// Category категория события после свёртки синонимов
func (e Event) Category() Category {
	return CategoryOf(e.Type)
}

// HasStation true, если событие привязано к станции
func (e Event) HasStation() bool {
	return e.StationID != nil && *e.StationID != ""
}

// Validate проверяет обязательные поля записи
func (e Event) Validate() error {
	if e.TruckID == "" {
		return fmt.Errorf("truck_id is required")
	}
	if e.Duration() < 0 {
		return fmt.Errorf("negative duration: end_time %.2f before start_time %.2f", e.EndTime, e.StartTime)
	}
	return nil
}
