package logger

import "log/slog"

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// UserID records the user identifier under the key "user_id".
func UserID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("user_id", id)
}

// CommunitySlug records a community slug under the key "community_slug".
func CommunitySlug(slug string) slog.Attr {
	return slog.String("community_slug", slug)
}

// MissionSlug records a mission slug under the key "mission_slug".
func MissionSlug(slug string) slog.Attr {
	return slog.String("mission_slug", slug)
}

// SlotID records a slot identifier under the key "slot_id".
func SlotID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("slot_id", id)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}
