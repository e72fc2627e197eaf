package consent

import (
	"errors"

	"go.uber.org/zap"

	"nocookies/internal/dom"
)

// SanitizeStorage removes every local and session storage entry whose key
// is not essential. Access failures are logged and swallowed; the return
// value counts removed keys.
func (s *Scanner) SanitizeStorage(doc dom.Document) int {
	removed := 0
	for _, area := range []struct {
		name    string
		storage dom.Storage
	}{
		{"localStorage", doc.LocalStorage()},
		{"sessionStorage", doc.SessionStorage()},
	} {
		removed += s.sanitizeArea(area.name, area.storage)
	}
	return removed
}

func (s *Scanner) sanitizeArea(name string, st dom.Storage) int {
	if st == nil {
		return 0
	}

	keys, err := st.Keys()
	if err != nil {
		s.logStorageError(name, err)
		return 0
	}

	removed := 0
	// reverse order, like index-based removal over a live storage
	for i := len(keys) - 1; i >= 0; i-- {
		key := keys[i]
		if s.patterns.IsEssentialKey(key) {
			continue
		}
		if err := st.Remove(key); err != nil {
			s.logStorageError(name, err)
			if errors.Is(err, dom.ErrStorageDenied) {
				return removed
			}
			continue
		}
		s.log.Debug("removed storage key", zap.String("area", name), zap.String("key", key))
		removed++
	}
	return removed
}

func (s *Scanner) logStorageError(area string, err error) {
	s.log.Warn("storage access failed", zap.String("area", area), zap.Error(err))
}
