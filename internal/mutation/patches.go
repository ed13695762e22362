package mutation

import (
	"slices"

	"github.com/instiwise/client-go/internal/cache"
)

// HasMember reports whether userID is in the membership list.
func HasMember(members []string, userID string) bool {
	return slices.Contains(members, userID)
}

// AddMember returns a copy of members with userID appended. Idempotent: an
// id appears at most once.
func AddMember(members []string, userID string) []string {
	if slices.Contains(members, userID) {
		return slices.Clone(members)
	}
	out := make([]string, 0, len(members)+1)
	out = append(out, members...)
	return append(out, userID)
}

// RemoveMember returns a copy of members without userID.
func RemoveMember(members []string, userID string) []string {
	out := make([]string, 0, len(members))
	for _, m := range members {
		if m != userID {
			out = append(out, m)
		}
	}
	return out
}

// SetMember returns members with userID present or absent per member.
func SetMember(members []string, userID string, member bool) []string {
	if member {
		return AddMember(members, userID)
	}
	return RemoveMember(members, userID)
}

// ListItemPatch builds a Patch transforming the item with the given id
// inside a []T cache entry. The slice and the item are copied; entries of
// other types or lists without the item pass through unchanged.
func ListItemPatch[T any](key cache.Key, id string, idOf func(T) string, transform func(T) T) Patch {
	return Patch{
		Key: key,
		Apply: func(data any) any {
			list, ok := data.([]T)
			if !ok {
				return data
			}
			idx := slices.IndexFunc(list, func(item T) bool { return idOf(item) == id })
			if idx < 0 {
				return data
			}
			out := slices.Clone(list)
			out[idx] = transform(out[idx])
			return out
		},
	}
}

// RemoveItemPatch builds a Patch deleting the item with the given id from a
// []T cache entry. Rollback restores the pre-image, so the item reappears
// at its original position.
func RemoveItemPatch[T any](key cache.Key, id string, idOf func(T) string) Patch {
	return Patch{
		Key: key,
		Apply: func(data any) any {
			list, ok := data.([]T)
			if !ok {
				return data
			}
			idx := slices.IndexFunc(list, func(item T) bool { return idOf(item) == id })
			if idx < 0 {
				return data
			}
			return slices.Delete(slices.Clone(list), idx, idx+1)
		},
	}
}

// FindInList extracts the item with the given id from a cached []T value.
func FindInList[T any](data any, id string, idOf func(T) string) (T, bool) {
	var zero T
	list, ok := data.([]T)
	if !ok {
		return zero, false
	}
	idx := slices.IndexFunc(list, func(item T) bool { return idOf(item) == id })
	if idx < 0 {
		return zero, false
	}
	return list[idx], true
}
