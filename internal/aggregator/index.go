package aggregator

import "github.com/bashkirian/haulstats/pkg/models"

// index хранит агрегаты по идентификатору и помнит порядок первого появления
type index[V any] struct {
	order []models.EntityID
	byID  map[models.EntityID]*V
}

func newIndex[V any]() *index[V] {
	return &index[V]{byID: make(map[models.EntityID]*V)}
}

// fetchOrInsert возвращает агрегат сущности, создавая его при первом обращении
func (ix *index[V]) fetchOrInsert(id models.EntityID, init func() V) *V {
	if v, ok := ix.byID[id]; ok {
		return v
	}
	v := init()
	ix.byID[id] = &v
	ix.order = append(ix.order, id)
	return &v
}

func (ix *index[V]) values() []V {
	out := make([]V, 0, len(ix.order))
	for _, id := range ix.order {
		out = append(out, *ix.byID[id])
	}
	return out
}
