package s3

// Config describes the bucket that holds queue objects.
type Config struct {
	Bucket         string `env:"S3_BUCKET"`
	Prefix         string `env:"S3_PREFIX" envDefault:"syncqueue/"` // object key prefix
	Region         string `env:"S3_REGION" envDefault:"us-east-1"`
	AccessKeyID    string `env:"S3_ACCESS_KEY_ID"`
	SecretKey      string `env:"S3_SECRET_ACCESS_KEY"`
	Endpoint       string `env:"S3_ENDPOINT"`                             // for S3-compatible services
	ForcePathStyle bool   `env:"S3_FORCE_PATH_STYLE" envDefault:"false"` // MinIO and friends
}
