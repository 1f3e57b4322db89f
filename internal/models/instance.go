package models

import "time"

// InstanceInfo describes the running host process.
// This corresponds to ~/.kgatracker/instance.yaml.
type InstanceInfo struct {
	Version   int       `yaml:"version"`
	Host      string    `yaml:"host"`
	Port      int       `yaml:"port"`
	PID       int       `yaml:"pid"`
	StartedAt time.Time `yaml:"started_at"`
}

// NewInstanceInfo creates a new instance info with current values.
func NewInstanceInfo(host string, port, pid int) *InstanceInfo {
	return &InstanceInfo{
		Version:   1,
		Host:      host,
		Port:      port,
		PID:       pid,
		StartedAt: time.Now().UTC(),
	}
}
