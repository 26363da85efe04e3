package config

const (
	defaultStateDir            = "/tmp/pip-accel-harness"
	defaultLogDir              = "~/.local/share/accel-harness/logs"
	defaultFakeS3Binary        = "fakes3"
	defaultFakeS3Port          = 12125
	defaultFakeS3Bucket        = "pip-accel-test-bucket"
	defaultStartTimeoutSeconds = 30
	defaultPollIntervalSeconds = 1
	defaultPipBinary           = "pip"
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
//
// The preparation steps pin the package states the workload's assertions
// assume: requests held at a release older than current so an upgrade path
// exists, wheel absent so from-source installs are exercised, and coloredlogs
// at an exact version for downgrade coverage.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		FakeS3: FakeS3{
			Binary:              defaultFakeS3Binary,
			Port:                defaultFakeS3Port,
			Bucket:              defaultFakeS3Bucket,
			StartTimeoutSeconds: defaultStartTimeoutSeconds,
			PollIntervalSeconds: defaultPollIntervalSeconds,
		},
		Prepare: Prepare{
			PipBinary: defaultPipBinary,
			Steps: []Step{
				{Package: "requests", Action: "install", Version: "2.6.0"},
				{Package: "wheel", Action: "remove"},
				{Package: "coloredlogs", Action: "install", Version: "5.0"},
			},
		},
		Workload: Workload{
			Command:     []string{"py.test", "-v"},
			SilenceBoto: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
