package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateFakeS3(); err != nil {
		return err
	}
	if err := c.validatePrepare(); err != nil {
		return err
	}
	if err := c.validateWorkload(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.StateDir == "" {
		return errors.New("paths.state_dir must be set")
	}
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set")
	}
	if c.Paths.StateDir == c.Paths.LogDir {
		return errors.New("paths.state_dir and paths.log_dir must differ: teardown removes state_dir contents")
	}
	return nil
}

func (c *Config) validateFakeS3() error {
	if c.FakeS3.Port <= 0 || c.FakeS3.Port > 65535 {
		return fmt.Errorf("fakes3.port must be a valid TCP port, got %d", c.FakeS3.Port)
	}
	if err := ensurePositiveMap(map[string]int{
		"fakes3.start_timeout_seconds": c.FakeS3.StartTimeoutSeconds,
		"fakes3.poll_interval_seconds": c.FakeS3.PollIntervalSeconds,
	}); err != nil {
		return err
	}
	if c.FakeS3.StartTimeoutSeconds < c.FakeS3.PollIntervalSeconds {
		return errors.New("fakes3.start_timeout_seconds must be at least fakes3.poll_interval_seconds")
	}
	if c.FakeS3.Bucket == "" {
		return errors.New("fakes3.bucket must be set")
	}
	return nil
}

func (c *Config) validatePrepare() error {
	for i, step := range c.Prepare.Steps {
		switch step.Action {
		case "install":
			if step.Version == "" {
				return fmt.Errorf("prepare.step[%d]: install of %q requires a version", i, step.Package)
			}
		case "remove":
			if step.Version != "" {
				return fmt.Errorf("prepare.step[%d]: remove of %q must not carry a version", i, step.Package)
			}
		default:
			return fmt.Errorf("prepare.step[%d]: unsupported action %q (want install or remove)", i, step.Action)
		}
	}
	return nil
}

func (c *Config) validateWorkload() error {
	if len(c.Workload.Command) == 0 {
		return errors.New("workload.command must name a default command")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
