package routing

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// RoleEHK is the on-board housekeeping supervisor role, which covers a whole train
const RoleEHK = "EHK"

// ErrMalformedTrainAccess is returned by DecodeTrainAccess when a train access blob
// is not a JSON object of train number to access entry lists
var ErrMalformedTrainAccess = errors.New("malformed train access")

// AccessEntry is a single grant of a train to a staff member
type AccessEntry struct {
	OriginDate      string
	Role            string
	AssignedCoaches []string
}

// accessEntryJSON accepts both the stored key names and the descriptive ones
type accessEntryJSON struct {
	OriginDate      json.RawMessage `json:"origin_date"`
	UT              json.RawMessage `json:"ut"`
	Role            json.RawMessage `json:"role"`
	CoachNumbers    json.RawMessage `json:"coach_numbers"`
	AssignedCoaches json.RawMessage `json:"assigned_coaches"`
}

// UnmarshalJSON decodes an access entry. Scalar fields that are not strings are
// stringified and coach lists may hold numbers.
func (e *AccessEntry) UnmarshalJSON(data []byte) error {
	var raw accessEntryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	e.OriginDate = scalarString(raw.OriginDate)
	e.Role = scalarString(raw.UT)
	if e.Role == "" {
		e.Role = scalarString(raw.Role)
	}

	coaches := raw.CoachNumbers
	if isEmptyJSON(coaches) {
		coaches = raw.AssignedCoaches
	}
	e.AssignedCoaches = nil
	if isEmptyJSON(coaches) {
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(coaches, &items); err != nil {
		return fmt.Errorf("coach list is not an array: %w", err)
	}
	for _, item := range items {
		if coach := scalarString(item); coach != "" {
			e.AssignedCoaches = append(e.AssignedCoaches, coach)
		}
	}
	return nil
}

// MarshalJSON encodes the entry with the stored key names
func (e AccessEntry) MarshalJSON() ([]byte, error) {
	coaches := e.AssignedCoaches
	if coaches == nil {
		coaches = []string{}
	}
	return json.Marshal(struct {
		OriginDate   string   `json:"origin_date"`
		UT           string   `json:"ut"`
		CoachNumbers []string `json:"coach_numbers"`
	}{e.OriginDate, e.Role, coaches})
}

// IsEHK reports whether the entry grants the EHK role
func (e AccessEntry) IsEHK() bool {
	return strings.TrimSpace(e.Role) == RoleEHK
}

// TrainAccess maps a train number to the staff member's grants on that train
type TrainAccess map[string][]AccessEntry

// TrainNumbers returns the train numbers in a stable order
func (ta TrainAccess) TrainNumbers() []string {
	trains := make([]string, 0, len(ta))
	for train := range ta {
		trains = append(trains, train)
	}
	sort.Strings(trains)
	return trains
}

// DecodeTrainAccess strictly decodes a train access blob.
// Empty, "null" and "{}" blobs decode to an empty map.
func DecodeTrainAccess(raw []byte) (TrainAccess, error) {
	if isEmptyJSON(raw) {
		return TrainAccess{}, nil
	}

	var access TrainAccess
	if err := json.Unmarshal(raw, &access); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTrainAccess, err)
	}
	if access == nil {
		access = TrainAccess{}
	}
	return access, nil
}

// ParseTrainAccess leniently decodes a train access blob. Trains whose value is not
// a list and entries that are not objects are skipped and logged, so one bad grant
// never hides the rest of the staff member's grants.
func ParseTrainAccess(raw []byte, logger *zap.Logger) TrainAccess {
	if access, err := DecodeTrainAccess(raw); err == nil {
		return access
	}

	var trains map[string]json.RawMessage
	if err := json.Unmarshal(bytes.TrimSpace(raw), &trains); err != nil {
		logger.Debug("Skipping unparseable train access", zap.Error(err))
		return TrainAccess{}
	}

	access := make(TrainAccess, len(trains))
	for train, value := range trains {
		var items []json.RawMessage
		if err := json.Unmarshal(value, &items); err != nil {
			logger.Debug("Skipping train with malformed access list", zap.String("train", train), zap.Error(err))
			continue
		}

		entries := make([]AccessEntry, 0, len(items))
		for i, item := range items {
			var entry AccessEntry
			if err := json.Unmarshal(item, &entry); err != nil {
				logger.Debug("Skipping malformed access entry",
					zap.String("train", train),
					zap.Int("index", i),
					zap.Error(err))
				continue
			}
			entries = append(entries, entry)
		}
		access[train] = entries
	}
	return access
}

// isEmptyJSON reports whether raw is absent or one of the empty sentinels
func isEmptyJSON(raw []byte) bool {
	switch string(bytes.TrimSpace(raw)) {
	case "", "null", "{}", `""`:
		return true
	}
	return false
}

// scalarString renders a JSON scalar as a trimmed string. Objects and arrays yield "".
func scalarString(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return ""
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return ""
		}
		return strings.TrimSpace(s)
	case '{', '[':
		return ""
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(trimmed, &b); err != nil {
			return ""
		}
		return strconv.FormatBool(b)
	default:
		var n json.Number
		if err := json.Unmarshal(trimmed, &n); err != nil {
			return ""
		}
		return n.String()
	}
}
