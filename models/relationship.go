package models

// Relationship carries a user's per-connection weighting preferences. Two
// generations of the data exist side by side: a frequency map (days until the
// user wants to see someone again, negative meaning the connection is
// ignored) and categorical lists. WeightFor normalizes both shapes.
type Relationship struct {
	UserID            string         `dynamodbav:"userId"`
	Frequency         map[string]int `dynamodbav:"frequency,omitempty"`
	IgnoreUsers       []string       `dynamodbav:"ignoreUsers,omitempty"`
	FrequentUsers     []string       `dynamodbav:"frequentUsers,omitempty"`
	SemiFrequentUsers []string       `dynamodbav:"semiFrequentUsers,omitempty"`
}

// FrequencyIgnore marks an ignored connection in the frequency map.
const FrequencyIgnore = -1

// ConnectionWeight is the normalized weighting for a single connection.
type ConnectionWeight struct {
	CooldownDays int
	Multiplier   float64
	Ignored      bool
}

// WeightFor resolves the weighting the owner applies to otherID. Custom
// cooldowns and categorical boosts are premium features; everyone else gets
// the defaults.
func (r Relationship) WeightFor(otherID string, isPremium bool, defaultCooldownDays int, frequentMultiplier, semiFrequentMultiplier float64) ConnectionWeight {
	weight := ConnectionWeight{CooldownDays: defaultCooldownDays, Multiplier: 1}
	if !isPremium {
		return weight
	}

	if days, ok := r.Frequency[otherID]; ok {
		if days < 0 {
			weight.Ignored = true
			return weight
		}
		weight.CooldownDays = days
	}

	if containsID(r.IgnoreUsers, otherID) {
		weight.Ignored = true
		return weight
	}
	if containsID(r.FrequentUsers, otherID) {
		weight.Multiplier = frequentMultiplier
	} else if containsID(r.SemiFrequentUsers, otherID) {
		weight.Multiplier = semiFrequentMultiplier
	}
	return weight
}

func containsID(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

// RelationshipsTable is the DynamoDB table name for relationships
const RelationshipsTable = "Relationships"
