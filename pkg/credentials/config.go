package credentials

// Config selects where secrets come from. Local mode reads them from the
// process environment (usually filled from .env.local); every other stage
// reads them from SSM Parameter Store under /<Prefix>/<Stage>/.
type Config struct {
	Stage   string `env:"STAGE" envDefault:"production"`
	Offline bool   `env:"IS_OFFLINE" envDefault:"false"`
	Prefix  string `env:"SSM_PREFIX" envDefault:"masky"`

	Region          string `env:"AWS_REGION" envDefault:"us-east-1"`
	Endpoint        string `env:"SSM_ENDPOINT"` // LocalStack and other emulators
	AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
}
