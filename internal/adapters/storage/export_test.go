package storage

import "time"

// SetClock reemplaza el reloj del storage en tests.
func SetClock(s *SQLiteStorage, now func() time.Time) {
	s.now = now
}
