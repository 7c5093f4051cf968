package scoring

import (
	"sort"
	"strings"
)

var relationshipLabels = map[Relationship]string{
	RelationshipSelf:          "Self",
	RelationshipTopBoss:       "Top Boss",
	RelationshipHR:            "HR",
	RelationshipReportingBoss: "Reporting Boss",
	RelationshipPeer:          "Peer",
	RelationshipSubordinate:   "Subordinate",
}

// ParseRelationship accepts the stored snake_case value, case-insensitive and trimmed.
func ParseRelationship(value string) (Relationship, bool) {
	candidate := Relationship(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := relationshipLabels[candidate]; !ok {
		return "", false
	}
	return candidate, true
}

// Normalize resolves the effective relationship of an evaluation. The self flag wins over
// whatever relationship_type carries.
func Normalize(relationshipType string, isSelfEvaluator bool) (Relationship, bool) {
	if isSelfEvaluator {
		return RelationshipSelf, true
	}
	return ParseRelationship(relationshipType)
}

func (r Relationship) Label() string {
	if label, ok := relationshipLabels[r]; ok {
		return label
	}
	return string(r)
}

func (r Relationship) IsSelf() bool {
	return r == RelationshipSelf
}

// SortRelationships orders relationships by DisplayOrder.
func SortRelationships(relationships []Relationship) {
	rank := make(map[Relationship]int, len(DisplayOrder))
	for i, r := range DisplayOrder {
		rank[r] = i
	}
	sort.SliceStable(relationships, func(i, j int) bool {
		ri, iok := rank[relationships[i]]
		rj, jok := rank[relationships[j]]
		switch {
		case iok && jok:
			return ri < rj
		case iok:
			return true
		case jok:
			return false
		default:
			return relationships[i] < relationships[j]
		}
	})
}

// Partition selects which relationships contribute to an aggregation.
type Partition func(Relationship) bool

func SelfPartition(r Relationship) bool {
	return r == RelationshipSelf
}

// TotalPartition is the union of every non-self relationship.
func TotalPartition(r Relationship) bool {
	return r != RelationshipSelf
}

func AllPartition(Relationship) bool {
	return true
}

func RelationPartition(relationship Relationship) Partition {
	return func(r Relationship) bool {
		return r == relationship
	}
}

// PartitionFor maps a partition name used by the API and CLI ("self", "total" or a relationship).
func PartitionFor(name string) (Partition, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "total":
		return TotalPartition, true
	case "all":
		return AllPartition, true
	}
	relationship, ok := ParseRelationship(name)
	if !ok {
		return nil, false
	}
	if relationship == RelationshipSelf {
		return SelfPartition, true
	}
	return RelationPartition(relationship), true
}
