package storage

// S3Options holds the connection settings for an S3-compatible bucket.
type S3Options struct {
	Endpoint       string // empty for AWS, e.g. "http://minio:9000" otherwise
	Region         string
	Bucket         string
	AccessKey      string // empty to use the default AWS credential chain
	SecretKey      string
	ForcePathStyle bool
}
