package api

import (
	"fmt"

	"github.com/zfogg/citysearch/internal/cli/client"
	"github.com/zfogg/citysearch/internal/cli/logger"
)

// ListDocuments returns a page of documents
func ListDocuments(index string, size, from int) (*DocumentResults, error) {
	var response DocumentResults
	req := client.GetClient().
		R().
		SetQueryParam("size", fmt.Sprintf("%d", size)).
		SetQueryParam("from", fmt.Sprintf("%d", from)).
		SetResult(&response)
	if index != "" {
		req.SetQueryParam("index", index)
	}

	resp, err := req.Get("/api/documents")
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, ParseError(resp)
	}
	return &response, nil
}

// GetDocument fetches one document
func GetDocument(index, id string) (*Document, error) {
	var response Document
	req := client.GetClient().R().SetPathParam("id", id).SetResult(&response)
	if index != "" {
		req.SetQueryParam("index", index)
	}

	resp, err := req.Get("/api/documents/{id}")
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, ParseError(resp)
	}
	return &response, nil
}

// CreateDocument indexes a new document
func CreateDocument(in DocumentInput) (*WriteResponse, error) {
	logger.Debug("Creating document", "title", in.Title, "index", in.Index)

	var response WriteResponse
	resp, err := client.GetClient().
		R().
		SetBody(in).
		SetResult(&response).
		Post("/api/documents")
	if err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, ParseError(resp)
	}
	return &response, nil
}

// UpdateDocument applies a partial update
func UpdateDocument(p DocumentPatch) (*WriteResponse, error) {
	logger.Debug("Updating document", "id", p.ID, "index", p.Index)

	var response WriteResponse
	resp, err := client.GetClient().
		R().
		SetBody(p).
		SetResult(&response).
		Put("/api/documents")
	if err != nil {
		return nil, fmt.Errorf("failed to update document: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, ParseError(resp)
	}
	return &response, nil
}

// DeleteDocument removes one document
func DeleteDocument(index, id string) error {
	logger.Debug("Deleting document", "id", id, "index", index)

	req := client.GetClient().R().SetQueryParam("id", id)
	if index != "" {
		req.SetQueryParam("index", index)
	}

	resp, err := req.Delete("/api/documents")
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if !resp.IsSuccess() {
		return ParseError(resp)
	}
	return nil
}

// SearchDocuments runs a full-text search
func SearchDocuments(req SearchRequest) (*DocumentResults, error) {
	logger.Debug("Searching documents", "query", req.Query, "index", req.Index)

	var response DocumentResults
	resp, err := client.GetClient().
		R().
		SetBody(req).
		SetResult(&response).
		Post("/api/search")
	if err != nil {
		return nil, fmt.Errorf("failed to search documents: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, ParseError(resp)
	}
	return &response, nil
}

// SeedDocuments loads the sample documents
func SeedDocuments() (*SeedResponse, error) {
	var response SeedResponse
	resp, err := client.GetClient().R().SetResult(&response).Post("/api/seed")
	if err != nil {
		return nil, fmt.Errorf("failed to seed documents: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, ParseError(resp)
	}
	return &response, nil
}

// ClearDocuments deletes every document of the default index
func ClearDocuments() (*ClearResponse, error) {
	var response ClearResponse
	resp, err := client.GetClient().R().SetResult(&response).Delete("/api/seed")
	if err != nil {
		return nil, fmt.Errorf("failed to clear documents: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, ParseError(resp)
	}
	return &response, nil
}
