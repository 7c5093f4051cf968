package scoring

type Relationship string

const (
	RelationshipSelf          Relationship = "self"
	RelationshipTopBoss       Relationship = "top_boss"
	RelationshipHR            Relationship = "hr"
	RelationshipReportingBoss Relationship = "reporting_boss"
	RelationshipPeer          Relationship = "peer"
	RelationshipSubordinate   Relationship = "subordinate"
)

// DisplayOrder is the fixed column order used by every report.
var DisplayOrder = []Relationship{
	RelationshipSelf,
	RelationshipTopBoss,
	RelationshipPeer,
	RelationshipHR,
	RelationshipSubordinate,
	RelationshipReportingBoss,
}

type Category string

const (
	CategoryTask   Category = "task"
	CategoryPeople Category = "people"
	CategoryOther  Category = "other"
)

const (
	QuadrantTeamLeadership = "Team Leadership"
	QuadrantSocialite      = "Socialite"
	QuadrantAuthoritarian  = "Authoritarian"
	QuadrantImpoverished   = "Impoverished"

	quadrantThreshold = 50.0
)

const (
	MinWeight = 0
	MaxWeight = 100
)
