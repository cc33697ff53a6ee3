/* Copyright © 2025-2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 *
 * Package botstore fetches and stores submitted bot packages in Amazon S3.
 * It grew out of this repository's former S3-backed http cache and keeps its
 * conventions: aws-sdk-go-v2 clients, optional gzip content encoding and an
 * up front bucket permission check.
 */
package botstore

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// ObjectAPI is the subset of *s3.Client the store relies on.
type ObjectAPI interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput,
		optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput,
		optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput,
		optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// Store objects retrieve and persist bot packages using Amazon S3.
type Store struct {
	// Config is the Amazon S3 configuration.
	Config aws.Config

	// Client is the s3 client the store uses when interacting with S3.
	// By default this is initialized in Init(), but callers can optionally
	// override this with their own client if desired.
	Client ObjectAPI

	// bucketName is the default bucket, used when a call does not name one
	bucketName string

	// gzip indicates whether Put should compress packages. Fetch always
	// honors the stored object's content encoding.
	gzip bool
}

// RetrievalError reports a bot package that could not be downloaded.
type RetrievalError struct {
	Key    string
	Bucket string
	// Missing is set when the object does not exist in the bucket
	Missing bool
	Err     error
}

func (e *RetrievalError) Error() string {
	if e.Missing {
		return fmt.Sprintf("botstore.fetch: no such package %v/%v", e.Bucket,
			e.Key)
	}
	return fmt.Sprintf("botstore.fetch: failed to fetch %v/%v: %v", e.Bucket,
		e.Key, e.Err)
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}

// New returns a new Store whose default bucket is bucketNameIn. Callers
// should take care to invoke Init() on the returned Store before use unless
// they supply their own Client.
func New(bucketNameIn string, gzipIn bool) *Store {
	return &Store{
		bucketName: bucketNameIn,
		gzip:       gzipIn,
	}
}

func (s *Store) bucket(container string) string {
	if container != "" {
		return container
	}
	return s.bucketName
}

// Fetch downloads the package stored under key in container (or the default
// bucket when container is empty) to destPath and returns destPath.
func (s *Store) Fetch(ctx context.Context, key string, destPath string,
	container string) (string, error) {

	bucket := s.bucket(container)
	input := &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}

	resp, err := s.Client.GetObject(ctx, input)
	if err != nil {
		var apiErr smithy.APIError
		missing := errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchKey"
		return "", &RetrievalError{Key: key, Bucket: bucket, Missing: missing,
			Err: err}
	}
	defer resp.Body.Close()

	var rdr io.Reader = resp.Body
	if aws.ToString(resp.ContentEncoding) == "gzip" {
		gr, err := gzip.NewReader(resp.Body)
		if err != nil {
			return "", &RetrievalError{Key: key, Bucket: bucket,
				Err: fmt.Errorf("open compressed object: %w", err)}
		}
		defer gr.Close()
		rdr = gr
	}

	if err := writeFile(destPath, rdr); err != nil {
		return "", &RetrievalError{Key: key, Bucket: bucket, Err: err}
	}
	log.Printf("botstore.fetch: downloaded %v/%v to %v", bucket, key, destPath)

	return destPath, nil
}

func writeFile(destPath string, rdr io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return err
	}
	f, err := os.Create(destPath)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, rdr); err != nil {
		f.Close()
		os.Remove(destPath)
		return fmt.Errorf("write %v: %w", destPath, err)
	}

	return f.Close()
}

// Put uploads the package at srcPath under key in container (or the default
// bucket when container is empty).
func (s *Store) Put(ctx context.Context, key string, srcPath string,
	container string) error {

	data, err := os.ReadFile(srcPath)
	if err != nil {
		return fmt.Errorf("botstore.put: failed to read %v: %w", srcPath, err)
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket(container)),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	}

	if s.gzip {
		var buf bytes.Buffer
		gw := gzip.NewWriter(&buf)
		if _, err := gw.Write(data); err != nil {
			return fmt.Errorf("botstore.put: failed to gzip %v: %w", srcPath, err)
		}
		if err := gw.Close(); err != nil {
			return fmt.Errorf("botstore.put: failed to close gzip writer for %v: %w",
				srcPath, err)
		}
		input.Body = &buf
		input.ContentEncoding = aws.String("gzip")
	}

	if _, err := s.Client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("botstore.put: put failed for %v/%v: %w", *input.Bucket,
			key, err)
	}
	log.Printf("botstore.put: uploaded %v to %v/%v", srcPath, *input.Bucket, key)

	return nil
}

// Init loads AWS configuration and verifies the default bucket is reachable.
// The default configuration sources are:
// * Environment Variables (e.g. AWS_ACCESS_KEY_ID and AWS_SECRET_KEY)
// * Shared Configuration and Shared Credentials files.
// A non-empty profile selects a named shared configuration profile and a
// non-empty region overrides the configured region.
func (s *Store) Init(ctx context.Context, profile string, region string) error {
	var opts []func(*config.LoadOptions) error
	if profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(profile))
	}
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}

	var err error
	s.Config, err = config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return fmt.Errorf("botstore.init: failed to load AWS config: %w", err)
	}
	s.Client = s3.NewFromConfig(s.Config)

	if s.bucketName == "" {
		return nil
	}
	// Permission check: verify bucket exists and is accessible
	if _, err = s.Client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucketName),
	}); err != nil {
		return fmt.Errorf("botstore.init: head bucket failed for %s: %w",
			s.bucketName, err)
	}

	return nil
}
