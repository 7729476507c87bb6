package db

import "strconv"

// Relation is one edge of entity_relations: EntityID lists RelatedID in its bucket for
// RelatedType.
type Relation struct {
	EntityID    int64
	EntityType  string
	RelatedID   int64
	RelatedType string
}

func (r Relation) String() string {
	return r.EntityType + " " + strconv.FormatInt(r.EntityID, 10) + " -> " + r.RelatedType + " " + strconv.FormatInt(r.RelatedID, 10)
}
