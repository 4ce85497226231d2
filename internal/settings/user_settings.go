package settings

// UserSetting returns userSettings[key], or def when the key or the
// userSettings object is missing.
func (s *Store) UserSetting(key string, def any) any {
	us, ok := s.Get(KeyUserSettings).(map[string]any)
	if !ok {
		return def
	}
	v, ok := us[key]
	if !ok {
		return def
	}
	return v
}

// SetUserSettings replaces the whole userSettings object and persists it.
func (s *Store) SetUserSettings(value map[string]any) error {
	return s.Set(KeyUserSettings, value, false)
}

// OpenDevTools reports whether the host should open its developer tools.
func (s *Store) OpenDevTools() bool {
	return s.GetBool(KeyOpenDevTools)
}

// WindowZoomFactor returns the stored zoom factor, or 1 when it is missing
// or not a positive number.
func (s *Store) WindowZoomFactor() float64 {
	if v, ok := s.Get(KeyWindowZoomFactor).(float64); ok && v > 0 {
		return v
	}
	return 1
}
