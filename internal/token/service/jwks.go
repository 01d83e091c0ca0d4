package service

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"

	jose "github.com/go-jose/go-jose/v4"
	"github.com/google/uuid"
	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"

	apperrors "github.com/keygateio/keygate/internal/errors"

	// Register blob storage drivers
	_ "gocloud.dev/blob/azureblob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"
)

// JWKSService stores and serves published JWKS documents for rsa256 APIs.
//
// Documents live in the blob store at {workspaceId}/{apiId}/.well-known/jwks.json.
// During a signing-secret rotation both the old and new public keys are
// published, so verifiers accept tokens from either signer for the overlap
// window. Revoked keys are left in place: a stale entry can still be needed
// to verify tokens issued just before a rotation.
type JWKSService interface {
	// Fetch reads and parses the JWKS document. Missing documents return
	// ErrJWKSNotFound.
	Fetch(ctx context.Context, workspaceID, apiID uuid.UUID) (*jose.JSONWebKeySet, error)

	// Raw reads the JWKS document bytes, for serving verbatim over HTTP.
	Raw(ctx context.Context, workspaceID, apiID uuid.UUID) ([]byte, error)

	// Publish writes the JWKS document, replacing any existing one.
	Publish(ctx context.Context, workspaceID, apiID uuid.UUID, set *jose.JSONWebKeySet) error

	// AppendKey fetches the current document (or starts an empty one),
	// appends the public key tagged with kid, and re-publishes.
	AppendKey(ctx context.Context, workspaceID, apiID uuid.UUID, publicKey *rsa.PublicKey, kid string) error
}

// OpenBucket opens the blob bucket backing JWKS storage.
// Supports: s3://, gs://, azblob://, file://, mem://
func OpenBucket(ctx context.Context, bucketURL string) (*blob.Bucket, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to open jwks bucket")
	}
	return bucket, nil
}

type jwksService struct {
	bucket *blob.Bucket
}

// NewJWKSService creates a JWKSService over the given bucket.
func NewJWKSService(bucket *blob.Bucket) JWKSService {
	return &jwksService{bucket: bucket}
}

func jwksPath(workspaceID, apiID uuid.UUID) string {
	return fmt.Sprintf("%s/%s/.well-known/jwks.json", workspaceID, apiID)
}

func (s *jwksService) Raw(ctx context.Context, workspaceID, apiID uuid.UUID) ([]byte, error) {
	data, err := s.bucket.ReadAll(ctx, jwksPath(workspaceID, apiID))
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, ErrJWKSNotFound
		}
		return nil, apperrors.Wrap(err, "failed to read jwks")
	}
	return data, nil
}

func (s *jwksService) Fetch(ctx context.Context, workspaceID, apiID uuid.UUID) (*jose.JSONWebKeySet, error) {
	data, err := s.Raw(ctx, workspaceID, apiID)
	if err != nil {
		return nil, err
	}

	var set jose.JSONWebKeySet
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, apperrors.Wrap(err, "failed to parse jwks")
	}
	return &set, nil
}

func (s *jwksService) Publish(ctx context.Context, workspaceID, apiID uuid.UUID, set *jose.JSONWebKeySet) error {
	data, err := json.Marshal(set)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal jwks")
	}

	opts := &blob.WriterOptions{ContentType: "application/json"}
	if err := s.bucket.WriteAll(ctx, jwksPath(workspaceID, apiID), data, opts); err != nil {
		return apperrors.Wrap(err, "failed to publish jwks")
	}
	return nil
}

func (s *jwksService) AppendKey(
	ctx context.Context,
	workspaceID, apiID uuid.UUID,
	publicKey *rsa.PublicKey,
	kid string,
) error {
	set, err := s.Fetch(ctx, workspaceID, apiID)
	if err != nil {
		if !apperrors.Is(err, ErrJWKSNotFound) {
			return err
		}
		set = &jose.JSONWebKeySet{}
	}

	set.Keys = append(set.Keys, PublicJWK(publicKey, kid))
	return s.Publish(ctx, workspaceID, apiID, set)
}
