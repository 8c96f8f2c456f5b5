// Package results stores benchmark results in Azure Cosmos DB so runs
// from different hosts and builds can be compared.
package results

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/data/azcosmos"
	"github.com/google/uuid"

	"github.com/analogrelay/go-native-export/internal/bench"
)

// PartitionKeyPath is the partition key of the results container.
const PartitionKeyPath = "/strategy"

// Document is one stored benchmark result.
type Document struct {
	ID           string    `json:"id"`
	RunID        string    `json:"runId"`
	Strategy     string    `json:"strategy"`
	Symbol       string    `json:"symbol"`
	GOOS         string    `json:"goos"`
	GOARCH       string    `json:"goarch"`
	GoVersion    string    `json:"goVersion"`
	Workers      int       `json:"workers"`
	TotalOps     int64     `json:"totalOps"`
	Errors       int64     `json:"errors"`
	ElapsedMs    int64     `json:"elapsedMs"`
	OpsPerSecond float64   `json:"opsPerSecond"`
	LatencyNs    float64   `json:"latencyNs"`
	Timestamp    time.Time `json:"timestamp"`
}

// NewDocuments turns the results of one run into documents sharing runID.
func NewDocuments(runID uuid.UUID, symbol string, rs []*bench.Results, now time.Time) []Document {
	docs := make([]Document, 0, len(rs))
	for _, r := range rs {
		docs = append(docs, Document{
			ID:           uuid.NewString(),
			RunID:        runID.String(),
			Strategy:     string(r.Strategy),
			Symbol:       symbol,
			GOOS:         runtime.GOOS,
			GOARCH:       runtime.GOARCH,
			GoVersion:    runtime.Version(),
			Workers:      r.Workers,
			TotalOps:     r.TotalOps,
			Errors:       r.Errors,
			ElapsedMs:    r.ElapsedTime.Milliseconds(),
			OpsPerSecond: r.OpsPerSecond,
			LatencyNs:    r.LatencyNs,
			Timestamp:    now.UTC(),
		})
	}
	return docs
}

// Publisher stores documents.
type Publisher interface {
	Publish(ctx context.Context, docs []Document) error
}

// CosmosPublisher writes documents to a Cosmos DB container.
type CosmosPublisher struct {
	client    *azcosmos.Client
	database  string
	container string
}

// NewCosmosClient connects with key when one is given and with Azure CLI
// credentials otherwise.
func NewCosmosClient(endpoint, key string) (*azcosmos.Client, error) {
	if key != "" {
		cred, err := azcosmos.NewKeyCredential(key)
		if err != nil {
			return nil, err
		}
		return azcosmos.NewClientWithKey(endpoint, cred, nil)
	}

	cred, err := azidentity.NewAzureCLICredential(nil)
	if err != nil {
		return nil, err
	}
	return azcosmos.NewClient(endpoint, cred, nil)
}

// NewCosmosPublisher returns a publisher for database/container.
func NewCosmosPublisher(client *azcosmos.Client, database, container string) *CosmosPublisher {
	return &CosmosPublisher{client: client, database: database, container: container}
}

// EnsureContainer creates the database and container if they do not
// exist yet.
func (p *CosmosPublisher) EnsureContainer(ctx context.Context) error {
	_, err := p.client.CreateDatabase(ctx, azcosmos.DatabaseProperties{ID: p.database}, nil)
	if err != nil && !isConflict(err) {
		return fmt.Errorf("failed to create database %s: %w", p.database, err)
	}

	dbClient, err := p.client.NewDatabase(p.database)
	if err != nil {
		return err
	}

	containerProperties := azcosmos.ContainerProperties{
		ID: p.container,
		PartitionKeyDefinition: azcosmos.PartitionKeyDefinition{
			Paths: []string{PartitionKeyPath},
			Kind:  azcosmos.PartitionKeyKindHash,
		},
	}
	_, err = dbClient.CreateContainer(ctx, containerProperties, nil)
	if err != nil && !isConflict(err) {
		return fmt.Errorf("failed to create container %s: %w", p.container, err)
	}
	return nil
}

// Publish upserts every document and returns all failures joined.
func (p *CosmosPublisher) Publish(ctx context.Context, docs []Document) error {
	containerClient, err := p.client.NewContainer(p.database, p.container)
	if err != nil {
		return fmt.Errorf("failed to get container client: %w", err)
	}

	var errs []error
	for _, doc := range docs {
		itemBytes, err := json.Marshal(doc)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		pk := azcosmos.NewPartitionKeyString(doc.Strategy)
		if _, err := containerClient.UpsertItem(ctx, pk, itemBytes, nil); err != nil {
			errs = append(errs, fmt.Errorf("upsert %s: %w", doc.ID, err))
		}
	}
	return errors.Join(errs...)
}

func isConflict(err error) bool {
	var respErr *azcore.ResponseError
	return errors.As(err, &respErr) && respErr.StatusCode == http.StatusConflict
}
