package vectordb

import "time"

// FilterCondition is implemented by every filter condition. Each backend
// converts conditions to its native filter format.
type FilterCondition interface {
	IsFilterCondition()
}

// FilterSet supports Must (AND), Should (OR), and MustNot (NOT) clauses.
//
// Example:
//
//	filters := vectordb.NewFilterSet(
//	    vectordb.Must(vectordb.NewMatch("title", "Urban Planning")),
//	)
type FilterSet struct {
	// Must: All conditions must match (AND)
	Must *ConditionSet `json:"must,omitempty"`
	// Should: At least one condition must match (OR)
	Should *ConditionSet `json:"should,omitempty"`
	// MustNot: None of the conditions should match (NOT)
	MustNot *ConditionSet `json:"mustNot,omitempty"`
}

// ConditionSet holds a group of conditions for a single clause.
type ConditionSet struct {
	Conditions []FilterCondition `json:"conditions,omitempty"`
}

// IsEmpty reports whether fs has no conditions at all.
func (fs *FilterSet) IsEmpty() bool {
	if fs == nil {
		return true
	}
	return fs.Must.isEmpty() && fs.Should.isEmpty() && fs.MustNot.isEmpty()
}

func (cs *ConditionSet) isEmpty() bool {
	return cs == nil || len(cs.Conditions) == 0
}

// MatchCondition is an exact match on a payload field (field = value).
// Supports string, bool and integer values.
type MatchCondition struct {
	Field string `json:"field"`
	Value any    `json:"equalTo"`
}

func (c *MatchCondition) IsFilterCondition() {}

// MatchAnyCondition matches when the field equals one of Values (IN).
type MatchAnyCondition struct {
	Field  string `json:"field"`
	Values []any  `json:"anyOf"`
}

func (c *MatchAnyCondition) IsFilterCondition() {}

// MatchExceptCondition matches when the field equals none of Values (NOT IN).
type MatchExceptCondition struct {
	Field  string `json:"field"`
	Values []any  `json:"noneOf"`
}

func (c *MatchExceptCondition) IsFilterCondition() {}

// TextCondition is a full-text match against a text-indexed field.
type TextCondition struct {
	Field string `json:"field"`
	Text  string `json:"text"`
}

func (c *TextCondition) IsFilterCondition() {}

// HasIDCondition matches points whose id is in IDs.
type HasIDCondition struct {
	IDs []string `json:"ids"`
}

func (c *HasIDCondition) IsFilterCondition() {}

// NumericRange defines bounds for numeric filtering.
type NumericRange struct {
	Gt  *float64 `json:"greaterThan,omitempty"`          // GreaterThan (exclusive)
	Gte *float64 `json:"greaterThanOrEqualTo,omitempty"` // GreaterThanOrEqualTo (inclusive)
	Lt  *float64 `json:"lessThan,omitempty"`             // LessThan (exclusive)
	Lte *float64 `json:"lessThanOrEqualTo,omitempty"`    // LessThanOrEqualTo (inclusive)
}

// NumericRangeCondition filters by numeric range.
type NumericRangeCondition struct {
	Field string       `json:"field"`
	Range NumericRange `json:"range"`
}

func (c *NumericRangeCondition) IsFilterCondition() {}

// TimeRange defines bounds for time filtering.
type TimeRange struct {
	Gt  *time.Time `json:"after,omitempty"`      // After (exclusive)
	Gte *time.Time `json:"atOrAfter,omitempty"`  // AtOrAfter (inclusive)
	Lt  *time.Time `json:"before,omitempty"`     // Before (exclusive)
	Lte *time.Time `json:"atOrBefore,omitempty"` // AtOrBefore (inclusive)
}

// TimeRangeCondition filters by a datetime payload field, e.g. the
// "created_at" timestamp the pipeline stamps on every inserted row.
type TimeRangeCondition struct {
	Field string    `json:"field"`
	Range TimeRange `json:"range"`
}

func (c *TimeRangeCondition) IsFilterCondition() {}

// IsEmptyCondition matches when the field is missing, null or [].
type IsEmptyCondition struct {
	Field string `json:"field"`
}

func (c *IsEmptyCondition) IsFilterCondition() {}

// NewFilterSet creates a FilterSet with the given clauses.
//
// Example:
//
//	vectordb.NewFilterSet(
//	    vectordb.Must(vectordb.NewMatchAny(vectordb.PartitionField, "vdb", "_default")),
//	    vectordb.MustNot(vectordb.NewIsEmpty("text")),
//	)
func NewFilterSet(clauses ...func(*FilterSet)) *FilterSet {
	fs := &FilterSet{}
	for _, clause := range clauses {
		clause(fs)
	}
	return fs
}

// Must adds conditions to the Must clause (AND).
func Must(conditions ...FilterCondition) func(*FilterSet) {
	return func(fs *FilterSet) {
		fs.Must = appendConditions(fs.Must, conditions)
	}
}

// Should adds conditions to the Should clause (OR).
func Should(conditions ...FilterCondition) func(*FilterSet) {
	return func(fs *FilterSet) {
		fs.Should = appendConditions(fs.Should, conditions)
	}
}

// MustNot adds conditions to the MustNot clause (NOT).
func MustNot(conditions ...FilterCondition) func(*FilterSet) {
	return func(fs *FilterSet) {
		fs.MustNot = appendConditions(fs.MustNot, conditions)
	}
}

func appendConditions(cs *ConditionSet, conditions []FilterCondition) *ConditionSet {
	if cs == nil {
		cs = &ConditionSet{}
	}
	cs.Conditions = append(cs.Conditions, conditions...)
	return cs
}

func NewMatch(field string, value any) *MatchCondition {
	return &MatchCondition{Field: field, Value: value}
}

func NewMatchAny(field string, values ...any) *MatchAnyCondition {
	return &MatchAnyCondition{Field: field, Values: values}
}

func NewMatchExcept(field string, values ...any) *MatchExceptCondition {
	return &MatchExceptCondition{Field: field, Values: values}
}

func NewText(field, text string) *TextCondition {
	return &TextCondition{Field: field, Text: text}
}

func NewHasID(ids ...string) *HasIDCondition {
	return &HasIDCondition{IDs: ids}
}

func NewNumericRange(field string, r NumericRange) *NumericRangeCondition {
	return &NumericRangeCondition{Field: field, Range: r}
}

func NewTimeRange(field string, r TimeRange) *TimeRangeCondition {
	return &TimeRangeCondition{Field: field, Range: r}
}

func NewIsEmpty(field string) *IsEmptyCondition {
	return &IsEmptyCondition{Field: field}
}

// PartitionFilter returns a condition restricting matches to partitions, or
// nil when partitions is empty.
func PartitionFilter(partitions ...string) FilterCondition {
	switch len(partitions) {
	case 0:
		return nil
	case 1:
		return NewMatch(PartitionField, partitions[0])
	}
	values := make([]any, len(partitions))
	for i, p := range partitions {
		values[i] = p
	}
	return NewMatchAny(PartitionField, values...)
}
