package sqlite

func (s Store) RunMigrations() error {
	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return err
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS seen_meetings (
		event_id VARCHAR NOT NULL,
		marked_at VARCHAR NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS seen_meetings_event_id ON seen_meetings (event_id)`,
}
