package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	apperrors "github.com/iflis7/iyuc-store/pkg/errors"
	"github.com/iflis7/iyuc-store/pkg/slug"
)

const defaultProductsFile = "scripts/seed/data/collection-01-products.json"

// ErrNoSalesChannel is returned when the backend has no sales channel to
// publish products to.
var ErrNoSalesChannel = errors.New("no sales channel found, run the backend seed first")

type salesChannel struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// loadProducts reads a JSON array of admin product payloads. A missing file
// yields no products.
func loadProducts(path string) ([]map[string]any, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var products []map[string]any
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, apperrors.Decode(path, err)
	}
	return products, nil
}

// productName is the label used in logs: title, else handle.
func productName(p map[string]any) string {
	if s, ok := p["title"].(string); ok && s != "" {
		return s
	}
	s, _ := p["handle"].(string)
	return s
}

// prepareProduct fills defaults on a copy of the payload: the sales channel
// and a handle derived from the title.
func prepareProduct(p map[string]any, channelID string) map[string]any {
	out := make(map[string]any, len(p)+2)
	for k, v := range p {
		out[k] = v
	}
	if _, ok := out["sales_channels"]; !ok {
		out["sales_channels"] = []map[string]string{{"id": channelID}}
	}
	if h, _ := out["handle"].(string); h == "" {
		if title, _ := out["title"].(string); title != "" {
			out["handle"] = slug.Generate(title)
		}
	}
	return out
}

func (c *adminClient) firstSalesChannel(ctx context.Context) (string, error) {
	raw, err := c.get(ctx, "/sales-channels")
	if err != nil {
		return "", fmt.Errorf("list sales channels: %w", err)
	}
	channels, err := decodeList[salesChannel](raw, "sales_channels")
	if err != nil {
		return "", err
	}
	if len(channels) == 0 || channels[0].ID == "" {
		return "", ErrNoSalesChannel
	}
	return channels[0].ID, nil
}

// pushProducts creates every product in the list. Individual failures are
// logged and counted.
func pushProducts(ctx context.Context, c *adminClient, products []map[string]any) (Summary, error) {
	var sum Summary
	if len(products) == 0 {
		c.logger.Info("no products to push")
		return sum, nil
	}

	channelID, err := c.firstSalesChannel(ctx)
	if err != nil {
		return sum, err
	}

	for _, p := range products {
		payload := prepareProduct(p, channelID)
		name := productName(payload)

		raw, err := c.post(ctx, "/products", payload)
		if err != nil {
			c.logger.Error("failed to create product",
				slog.String("product", name),
				slog.String("error", err.Error()),
			)
			sum.Failed++
			continue
		}

		var created struct {
			Product struct {
				Title string `json:"title"`
			} `json:"product"`
		}
		if json.Unmarshal(raw, &created) == nil && created.Product.Title != "" {
			name = created.Product.Title
		}
		c.logger.Info("created", slog.String("product", name))
		sum.Created++
	}

	c.logger.Info("done", slog.String("resource", "products"),
		slog.Int("created", sum.Created),
		slog.Int("failed", sum.Failed),
	)
	return sum, nil
}
