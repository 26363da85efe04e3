package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeFakeS3()
	c.normalizePrepare()
	c.normalizeWorkload()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeFakeS3() {
	c.FakeS3.Binary = strings.TrimSpace(c.FakeS3.Binary)
	if c.FakeS3.Binary == "" {
		c.FakeS3.Binary = defaultFakeS3Binary
	}
	if c.FakeS3.Port <= 0 {
		c.FakeS3.Port = defaultFakeS3Port
	}
	c.FakeS3.Bucket = strings.TrimSpace(c.FakeS3.Bucket)
	if c.FakeS3.Bucket == "" {
		c.FakeS3.Bucket = defaultFakeS3Bucket
	}
	if c.FakeS3.StartTimeoutSeconds <= 0 {
		c.FakeS3.StartTimeoutSeconds = defaultStartTimeoutSeconds
	}
	if c.FakeS3.PollIntervalSeconds <= 0 {
		c.FakeS3.PollIntervalSeconds = defaultPollIntervalSeconds
	}
}

func (c *Config) normalizePrepare() {
	c.Prepare.PipBinary = strings.TrimSpace(c.Prepare.PipBinary)
	if c.Prepare.PipBinary == "" {
		c.Prepare.PipBinary = defaultPipBinary
	}
	steps := make([]Step, 0, len(c.Prepare.Steps))
	for _, step := range c.Prepare.Steps {
		step.Package = strings.TrimSpace(step.Package)
		step.Action = strings.ToLower(strings.TrimSpace(step.Action))
		step.Version = strings.TrimSpace(step.Version)
		if step.Package == "" {
			continue
		}
		steps = append(steps, step)
	}
	c.Prepare.Steps = steps
}

func (c *Config) normalizeWorkload() {
	command := make([]string, 0, len(c.Workload.Command))
	for _, arg := range c.Workload.Command {
		if strings.TrimSpace(arg) == "" {
			continue
		}
		command = append(command, arg)
	}
	c.Workload.Command = command
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
