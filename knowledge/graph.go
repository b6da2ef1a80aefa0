// Package knowledge mirrors ingested documents and their extracted shipment
// records into Neo4j, so carriers, parties, and equipment can be traversed
// across documents.
package knowledge

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/haulstack/freight-assistant/extraction"
)

type Document struct {
	ID         string
	Filename   string
	ChunkCount int
}

// ShipmentSummary is a per-document rollup read back from the graph.
type ShipmentSummary struct {
	DocumentID string
	Filename   string
	ShipmentID string
	Carrier    string
	Shipper    string
	Consignee  string
	Rate       string
	Currency   string
}

// SyncDocument upserts the document node. Safe to call on re-ingest; the
// node is keyed by document id and its properties are overwritten.
func SyncDocument(ctx context.Context, driver neo4j.DriverWithContext, doc Document) error {
	if driver == nil {
		return fmt.Errorf("neo4j driver is nil")
	}

	session := driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if _, err := tx.Run(ctx, `
			MERGE (d:Document {id: $id})
			SET d.filename = $filename,
			    d.chunk_count = $chunk_count,
			    d.updated_at = datetime()
		`, map[string]any{
			"id":          doc.ID,
			"filename":    doc.Filename,
			"chunk_count": doc.ChunkCount,
		}); err != nil {
			return nil, fmt.Errorf("upsert document node: %w", err)
		}
		return nil, nil
	})

	return err
}

// SyncShipment attaches an extracted shipment record to its document and
// merges shared entities: the carrier, the shipper and consignee parties,
// and the equipment type. Entities are keyed by name so repeat appearances
// across documents converge on one node.
func SyncShipment(ctx context.Context, driver neo4j.DriverWithContext, documentID string, record extraction.Record) error {
	if driver == nil {
		return fmt.Errorf("neo4j driver is nil")
	}

	session := driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if _, err := tx.Run(ctx, `
			MATCH (d:Document {id: $doc_id})
			MERGE (s:Shipment {document_id: $doc_id})
			SET s.shipment_id = $shipment_id,
			    s.pickup_datetime = $pickup,
			    s.delivery_datetime = $delivery,
			    s.mode = $mode,
			    s.rate = $rate,
			    s.currency = $currency,
			    s.weight = $weight,
			    s.updated_at = datetime()
			MERGE (d)-[:DESCRIBES]->(s)
		`, map[string]any{
			"doc_id":      documentID,
			"shipment_id": record.ShipmentID,
			"pickup":      record.PickupDatetime,
			"delivery":    record.DeliveryDatetime,
			"mode":        record.Mode,
			"rate":        record.Rate,
			"currency":    record.Currency,
			"weight":      record.Weight,
		}); err != nil {
			return nil, fmt.Errorf("upsert shipment node: %w", err)
		}

		// Stale relations from a previous extraction of the same document
		// are dropped before the fresh ones are merged.
		if _, err := tx.Run(ctx, `
			MATCH (s:Shipment {document_id: $doc_id})-[r:HAULED_BY|SHIPPED_BY|DELIVERED_TO|USES_EQUIPMENT]->()
			DELETE r
		`, map[string]any{"doc_id": documentID}); err != nil {
			return nil, fmt.Errorf("clear shipment relations: %w", err)
		}

		if record.CarrierName != "" {
			if _, err := tx.Run(ctx, `
				MATCH (s:Shipment {document_id: $doc_id})
				MERGE (c:Carrier {name: $name})
				MERGE (s)-[:HAULED_BY]->(c)
			`, map[string]any{"doc_id": documentID, "name": record.CarrierName}); err != nil {
				return nil, fmt.Errorf("upsert carrier relation: %w", err)
			}
		}

		if record.Shipper != "" {
			if _, err := tx.Run(ctx, `
				MATCH (s:Shipment {document_id: $doc_id})
				MERGE (p:Party {name: $name})
				MERGE (s)-[:SHIPPED_BY]->(p)
			`, map[string]any{"doc_id": documentID, "name": record.Shipper}); err != nil {
				return nil, fmt.Errorf("upsert shipper relation: %w", err)
			}
		}

		if record.Consignee != "" {
			if _, err := tx.Run(ctx, `
				MATCH (s:Shipment {document_id: $doc_id})
				MERGE (p:Party {name: $name})
				MERGE (s)-[:DELIVERED_TO]->(p)
			`, map[string]any{"doc_id": documentID, "name": record.Consignee}); err != nil {
				return nil, fmt.Errorf("upsert consignee relation: %w", err)
			}
		}

		if record.EquipmentType != "" {
			if _, err := tx.Run(ctx, `
				MATCH (s:Shipment {document_id: $doc_id})
				MERGE (e:Equipment {name: $name})
				MERGE (s)-[:USES_EQUIPMENT]->(e)
			`, map[string]any{"doc_id": documentID, "name": record.EquipmentType}); err != nil {
				return nil, fmt.Errorf("upsert equipment relation: %w", err)
			}
		}

		return nil, nil
	})

	if err == nil {
		// Entities orphaned by the relation reset above are garbage.
		if _, cleanupErr := session.Run(ctx, `
			MATCH (n)
			WHERE (n:Carrier OR n:Party OR n:Equipment)
			  AND NOT (n)<-[]-(:Shipment)
			DELETE n
		`, nil); cleanupErr != nil {
			err = cleanupErr
		}
	}

	return err
}

// DocumentShipments reads back one summary row per document that has an
// attached shipment, newest first.
func DocumentShipments(ctx context.Context, driver neo4j.DriverWithContext) ([]ShipmentSummary, error) {
	if driver == nil {
		return nil, fmt.Errorf("neo4j driver is nil")
	}

	session := driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	records, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, `
			MATCH (d:Document)-[:DESCRIBES]->(s:Shipment)
			OPTIONAL MATCH (s)-[:HAULED_BY]->(c:Carrier)
			OPTIONAL MATCH (s)-[:SHIPPED_BY]->(sp:Party)
			OPTIONAL MATCH (s)-[:DELIVERED_TO]->(cn:Party)
			RETURN d.id AS document_id,
			       d.filename AS filename,
			       s.shipment_id AS shipment_id,
			       c.name AS carrier,
			       sp.name AS shipper,
			       cn.name AS consignee,
			       s.rate AS rate,
			       s.currency AS currency
			ORDER BY d.updated_at DESC
		`, nil)
		if err != nil {
			return nil, err
		}

		var summaries []ShipmentSummary
		for result.Next(ctx) {
			rec := result.Record()
			summaries = append(summaries, ShipmentSummary{
				DocumentID: stringValue(rec, "document_id"),
				Filename:   stringValue(rec, "filename"),
				ShipmentID: stringValue(rec, "shipment_id"),
				Carrier:    stringValue(rec, "carrier"),
				Shipper:    stringValue(rec, "shipper"),
				Consignee:  stringValue(rec, "consignee"),
				Rate:       stringValue(rec, "rate"),
				Currency:   stringValue(rec, "currency"),
			})
		}
		return summaries, result.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("read shipment summaries: %w", err)
	}

	summaries, _ := records.([]ShipmentSummary)
	return summaries, nil
}

func stringValue(rec *neo4j.Record, key string) string {
	val, ok := rec.Get(key)
	if !ok || val == nil {
		return ""
	}
	s, _ := val.(string)
	return s
}
