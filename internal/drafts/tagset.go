package drafts

import (
	"encoding/json"
	"sort"
)

// TagSet is an unordered set of tags. The zero value is an empty set.
type TagSet struct {
	items map[string]struct{}
}

func NewTagSet(tags ...string) TagSet {
	var s TagSet
	for _, tag := range tags {
		s.Add(tag)
	}
	return s
}

func (s TagSet) Has(tag string) bool {
	_, ok := s.items[tag]
	return ok
}

// Add inserts tag and reports whether the set changed.
func (s *TagSet) Add(tag string) bool {
	if s.items == nil {
		s.items = make(map[string]struct{})
	}
	if _, ok := s.items[tag]; ok {
		return false
	}
	s.items[tag] = struct{}{}
	return true
}

// Remove deletes tag and reports whether the set changed.
func (s *TagSet) Remove(tag string) bool {
	if _, ok := s.items[tag]; !ok {
		return false
	}
	delete(s.items, tag)
	return true
}

func (s TagSet) Len() int {
	return len(s.items)
}

// Values returns the members sorted.
func (s TagSet) Values() []string {
	out := make([]string, 0, len(s.items))
	for tag := range s.items {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// Equal reports whether both sets hold the same members.
func (s TagSet) Equal(other TagSet) bool {
	if s.Len() != other.Len() {
		return false
	}
	for tag := range s.items {
		if !other.Has(tag) {
			return false
		}
	}
	return true
}

func (s TagSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Values())
}

func (s *TagSet) UnmarshalJSON(data []byte) error {
	var tags []string
	if err := json.Unmarshal(data, &tags); err != nil {
		return err
	}
	*s = NewTagSet(tags...)
	return nil
}
