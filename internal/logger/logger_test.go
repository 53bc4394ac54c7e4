package logger

import "testing"

func TestNewModes(t *testing.T) {
	for _, mode := range []string{"development", "production", "prod", ""} {
		t.Run(mode, func(t *testing.T) {
			log, err := New(mode)
			if err != nil {
				t.Fatalf("New(%q) error = %v", mode, err)
			}
			child := log.With("component", "test")
			child.Debug("debug line", "n", 1)
			child.Info("info line")
		})
	}
}

func TestNopDiscards(t *testing.T) {
	log := Nop()
	log.Error("ignored", "key", "value")
	log.Sync()
}
