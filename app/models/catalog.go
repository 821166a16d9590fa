package models

// DefaultClassCapacity applies when a class session document has no capacity set.
const DefaultClassCapacity = 20

// ClassSession is a scheduled class slot. Seeded out of band; read-only here.
type ClassSession struct {
	ID          string `firestore:"-" json:"id"`
	Title       string `firestore:"title" json:"title"`
	DayOfWeek   string `firestore:"dayOfWeek" json:"dayOfWeek"`
	StartTime   string `firestore:"startTime" json:"startTime"` // "HH:MM"
	EndTime     string `firestore:"endTime" json:"endTime"`
	Category    string `firestore:"category" json:"category"`
	ProgramID   string `firestore:"programId" json:"programId"`
	Capacity    int    `firestore:"capacity" json:"capacity"`
	Description string `firestore:"description,omitempty" json:"description,omitempty"`
}

// EffectiveCapacity returns the capacity ceiling, falling back to the default
// when the document carries no explicit value.
func (c *ClassSession) EffectiveCapacity() int {
	if c.Capacity <= 0 {
		return DefaultClassCapacity
	}
	return c.Capacity
}

// ClassFilter narrows class session listings. Empty fields match everything.
type ClassFilter struct {
	Day       string
	ProgramID string
	Category  string
}

// Program is a catalog entity (e.g. "Kids BJJ"). Inactive programs are hidden
// from public listings.
type Program struct {
	ID          string `firestore:"-" json:"id"`
	Name        string `firestore:"name" json:"name"`
	Description string `firestore:"description" json:"description"`
	AgeGroup    string `firestore:"ageGroup" json:"ageGroup"`
	Category    string `firestore:"category" json:"category"`
	Active      bool   `firestore:"active" json:"active"`
	Schedule    string `firestore:"schedule,omitempty" json:"schedule,omitempty"`
}

// MembershipPlan is a purchasable plan consumed by billing orchestration.
type MembershipPlan struct {
	ID            string   `firestore:"-" json:"id"`
	Name          string   `firestore:"name" json:"name"`
	Price         int64    `firestore:"price" json:"price"`
	BillingCycle  string   `firestore:"billingCycle" json:"billingCycle"`
	Features      []string `firestore:"features" json:"features"`
	StripePriceID string   `firestore:"stripePriceId,omitempty" json:"stripePriceId,omitempty"`
	Active        bool     `firestore:"active" json:"active"`
}
