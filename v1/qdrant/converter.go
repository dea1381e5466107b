package qdrant

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	qdrant "github.com/qdrant/go-client/qdrant"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/yang0369/rag/v1/vectordb"
)

var errInvalidPointID = errors.New("[Qdrant] point id must be a UUID or an unsigned integer")

// ── Filters ──────────────────────────────────────────────────────────────────

// convertFilterSet converts a vectordb.FilterSet to a Qdrant filter.
// Returns nil when no condition survives conversion.
func convertFilterSet(filters *vectordb.FilterSet) (*qdrant.Filter, error) {
	if filters == nil {
		return nil, nil
	}

	filter := &qdrant.Filter{}
	var err error
	if filter.Must, err = convertConditionSet(filters.Must); err != nil {
		return nil, err
	}
	if filter.Should, err = convertConditionSet(filters.Should); err != nil {
		return nil, err
	}
	if filter.MustNot, err = convertConditionSet(filters.MustNot); err != nil {
		return nil, err
	}

	if len(filter.Must) == 0 && len(filter.Should) == 0 && len(filter.MustNot) == 0 {
		return nil, nil
	}
	return filter, nil
}

func convertConditionSet(cs *vectordb.ConditionSet) ([]*qdrant.Condition, error) {
	if cs == nil {
		return nil, nil
	}

	var conditions []*qdrant.Condition
	for _, c := range cs.Conditions {
		cond, err := convertCondition(c)
		if err != nil {
			return nil, err
		}
		if cond != nil {
			conditions = append(conditions, cond)
		}
	}
	return conditions, nil
}

func convertCondition(c vectordb.FilterCondition) (*qdrant.Condition, error) {
	switch cond := c.(type) {
	case *vectordb.MatchCondition:
		return convertMatch(cond)
	case *vectordb.MatchAnyCondition:
		return convertMatchAny(cond.Field, cond.Values, false)
	case *vectordb.MatchExceptCondition:
		return convertMatchAny(cond.Field, cond.Values, true)
	case *vectordb.TextCondition:
		return qdrant.NewMatchText(cond.Field, cond.Text), nil
	case *vectordb.HasIDCondition:
		ids, err := toPointIDs(cond.IDs)
		if err != nil {
			return nil, err
		}
		return qdrant.NewHasID(ids...), nil
	case *vectordb.NumericRangeCondition:
		return convertNumericRange(cond), nil
	case *vectordb.TimeRangeCondition:
		return convertTimeRange(cond), nil
	case *vectordb.IsEmptyCondition:
		return qdrant.NewIsEmpty(cond.Field), nil
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("[Qdrant] unsupported filter condition %T", c)
	}
}

func convertMatch(c *vectordb.MatchCondition) (*qdrant.Condition, error) {
	switch v := c.Value.(type) {
	case string:
		return qdrant.NewMatch(c.Field, v), nil
	case bool:
		return qdrant.NewMatchBool(c.Field, v), nil
	case int:
		return qdrant.NewMatchInt(c.Field, int64(v)), nil
	case int64:
		return qdrant.NewMatchInt(c.Field, v), nil
	default:
		return nil, fmt.Errorf("[Qdrant] unsupported match value type %T for field %q", c.Value, c.Field)
	}
}

// convertMatchAny builds an IN (or NOT IN when except is set) condition.
// All values must be strings or all integers.
func convertMatchAny(field string, values []any, except bool) (*qdrant.Condition, error) {
	if len(values) == 0 {
		return nil, nil
	}

	switch values[0].(type) {
	case string:
		strs := make([]string, len(values))
		for i, v := range values {
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("[Qdrant] mixed value types for field %q", field)
			}
			strs[i] = s
		}
		if except {
			return qdrant.NewMatchExceptKeywords(field, strs...), nil
		}
		return qdrant.NewMatchKeywords(field, strs...), nil

	case int, int64:
		ints := make([]int64, len(values))
		for i, v := range values {
			switch n := v.(type) {
			case int:
				ints[i] = int64(n)
			case int64:
				ints[i] = n
			default:
				return nil, fmt.Errorf("[Qdrant] mixed value types for field %q", field)
			}
		}
		if except {
			return qdrant.NewMatchExceptInts(field, ints...), nil
		}
		return qdrant.NewMatchInts(field, ints...), nil
	}

	return nil, fmt.Errorf("[Qdrant] unsupported value type %T for field %q", values[0], field)
}

func convertNumericRange(c *vectordb.NumericRangeCondition) *qdrant.Condition {
	r := c.Range
	if r.Gt == nil && r.Gte == nil && r.Lt == nil && r.Lte == nil {
		return nil
	}
	return qdrant.NewRange(c.Field, &qdrant.Range{Gt: r.Gt, Gte: r.Gte, Lt: r.Lt, Lte: r.Lte})
}

func convertTimeRange(c *vectordb.TimeRangeCondition) *qdrant.Condition {
	r := &qdrant.DatetimeRange{
		Gt:  toTimestamp(c.Range.Gt),
		Gte: toTimestamp(c.Range.Gte),
		Lt:  toTimestamp(c.Range.Lt),
		Lte: toTimestamp(c.Range.Lte),
	}
	if r.Gt == nil && r.Gte == nil && r.Lt == nil && r.Lte == nil {
		return nil
	}
	return qdrant.NewDatetimeRange(c.Field, r)
}

func toTimestamp(t *time.Time) *timestamppb.Timestamp {
	if t == nil {
		return nil
	}
	return timestamppb.New(*t)
}

// searchFilter merges the partition restriction and the caller's filters.
func searchFilter(partitions []string, filters *vectordb.FilterSet) (*qdrant.Filter, error) {
	filter, err := convertFilterSet(filters)
	if err != nil {
		return nil, err
	}

	partCond, err := convertCondition(vectordb.PartitionFilter(partitions...))
	if err != nil {
		return nil, err
	}
	if partCond == nil {
		return filter, nil
	}
	if filter == nil {
		filter = &qdrant.Filter{}
	}
	filter.Must = append(filter.Must, partCond)
	return filter, nil
}

// ── Point IDs ────────────────────────────────────────────────────────────────

// toPointID maps a string id to a Qdrant point id: canonical decimal
// strings become numeric ids, anything else must parse as a UUID.
func toPointID(id string) (*qdrant.PointId, error) {
	if err := vectordb.ValidateID(id); err != nil {
		return nil, fmt.Errorf("%w: %q", errInvalidPointID, id)
	}
	if n, err := strconv.ParseUint(id, 10, 64); err == nil {
		return qdrant.NewIDNum(n), nil
	}
	return qdrant.NewID(id), nil
}

func toPointIDs(ids []string) ([]*qdrant.PointId, error) {
	out := make([]*qdrant.PointId, 0, len(ids))
	for _, id := range ids {
		pid, err := toPointID(id)
		if err != nil {
			return nil, err
		}
		out = append(out, pid)
	}
	return out, nil
}

func extractPointID(id *qdrant.PointId) (string, error) {
	if id == nil {
		return "", fmt.Errorf("[Qdrant] nil point ID")
	}
	switch v := id.PointIdOptions.(type) {
	case *qdrant.PointId_Num:
		return strconv.FormatUint(v.Num, 10), nil
	case *qdrant.PointId_Uuid:
		return v.Uuid, nil
	default:
		return "", fmt.Errorf("[Qdrant] unexpected PointId type: %T", v)
	}
}

// ── Payload ──────────────────────────────────────────────────────────────────

// toPayload converts a payload map into Qdrant values. Types the SDK does not
// accept directly are normalized first: time.Time becomes RFC 3339 text and
// string slices become lists.
func toPayload(payload map[string]any) (map[string]*qdrant.Value, error) {
	normalized := make(map[string]any, len(payload))
	for k, v := range payload {
		normalized[k] = normalizeValue(v)
	}
	values, err := qdrant.TryValueMap(normalized)
	if err != nil {
		return nil, fmt.Errorf("[Qdrant] invalid payload: %w", err)
	}
	return values, nil
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case time.Time:
		return val.UTC().Format(time.RFC3339Nano)
	case []string:
		items := make([]any, len(val))
		for i, s := range val {
			items[i] = s
		}
		return items
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = normalizeValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalizeValue(item)
		}
		return out
	}
	return v
}

func convertPayload(payload map[string]*qdrant.Value) map[string]any {
	if payload == nil {
		return nil
	}
	result := make(map[string]any, len(payload))
	for k, v := range payload {
		result[k] = extractValue(v)
	}
	return result
}

func extractValue(v *qdrant.Value) any {
	if v == nil {
		return nil
	}
	switch val := v.Kind.(type) {
	case *qdrant.Value_StringValue:
		return val.StringValue
	case *qdrant.Value_IntegerValue:
		return val.IntegerValue
	case *qdrant.Value_DoubleValue:
		return val.DoubleValue
	case *qdrant.Value_BoolValue:
		return val.BoolValue
	case *qdrant.Value_StructValue:
		if val.StructValue == nil {
			return nil
		}
		return convertPayload(val.StructValue.Fields)
	case *qdrant.Value_ListValue:
		if val.ListValue == nil {
			return nil
		}
		items := make([]any, len(val.ListValue.Values))
		for i, item := range val.ListValue.Values {
			items[i] = extractValue(item)
		}
		return items
	default:
		return nil
	}
}

func parseScoredPoints(collection string, resp []*qdrant.ScoredPoint) ([]vectordb.SearchResult, error) {
	results := make([]vectordb.SearchResult, 0, len(resp))
	for _, r := range resp {
		id, err := extractPointID(r.Id)
		if err != nil {
			return nil, err
		}
		results = append(results, vectordb.SearchResult{
			ID:             id,
			Score:          r.Score,
			Payload:        convertPayload(r.Payload),
			CollectionName: collection,
		})
	}
	return results, nil
}

// ── Collections ──────────────────────────────────────────────────────────────

func toDistance(m vectordb.Metric) (qdrant.Distance, error) {
	switch m {
	case vectordb.MetricCosine, "":
		return qdrant.Distance_Cosine, nil
	case vectordb.MetricDot:
		return qdrant.Distance_Dot, nil
	case vectordb.MetricEuclid:
		return qdrant.Distance_Euclid, nil
	case vectordb.MetricManhattan:
		return qdrant.Distance_Manhattan, nil
	}
	return qdrant.Distance_UnknownDistance, fmt.Errorf("%w: %q", vectordb.ErrUnknownMetric, m)
}

// hnswConfig returns the HNSW settings for a collection. A flat index is
// expressed as m=0, which disables graph building.
func hnswConfig(cfg vectordb.CollectionConfig) *qdrant.HnswConfigDiff {
	if cfg.IndexType == vectordb.IndexFlat {
		return &qdrant.HnswConfigDiff{M: qdrant.PtrOf(uint64(0))}
	}
	if cfg.HnswM == 0 && cfg.HnswEfConstruct == 0 {
		return nil
	}
	diff := &qdrant.HnswConfigDiff{}
	if cfg.HnswM > 0 {
		diff.M = qdrant.PtrOf(cfg.HnswM)
	}
	if cfg.HnswEfConstruct > 0 {
		diff.EfConstruct = qdrant.PtrOf(cfg.HnswEfConstruct)
	}
	return diff
}

// extractVectorDetails returns the vector size and distance of a collection
// with a single unnamed vector, or zero values when the config is missing.
func extractVectorDetails(info *qdrant.CollectionInfo) (int, string) {
	if info == nil ||
		info.Config == nil ||
		info.Config.Params == nil ||
		info.Config.Params.VectorsConfig == nil ||
		info.Config.Params.VectorsConfig.Config == nil {
		return 0, ""
	}

	if cfg, ok := info.Config.Params.VectorsConfig.Config.(*qdrant.VectorsConfig_Params); ok {
		return int(cfg.Params.Size), cfg.Params.Distance.String()
	}
	return 0, ""
}

func payloadIndexes(info *qdrant.CollectionInfo) map[string]string {
	if info == nil || len(info.PayloadSchema) == 0 {
		return nil
	}
	out := make(map[string]string, len(info.PayloadSchema))
	for field, schema := range info.PayloadSchema {
		out[field] = schema.GetDataType().String()
	}
	return out
}

func derefUint64(v *uint64) uint64 {
	if v != nil {
		return *v
	}
	return 0
}
