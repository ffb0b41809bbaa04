package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/goliatone/go-content-blocks/internal/blocks"
)

// contentFile is the JSON document read by the render command. Values map
// root field keynames of the block type onto their text content.
type contentFile struct {
	Host struct {
		Class string `json:"class"`
		ID    string `json:"id"`
	} `json:"host"`
	Instances []contentInstance `json:"instances"`
}

type contentInstance struct {
	Slot      string            `json:"slot"`
	BlockType string            `json:"block_type"`
	Values    map[string]string `json:"values"`
}

func readContentFile(path string) (*contentFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read content: %w", err)
	}
	var content contentFile
	if err := json.Unmarshal(raw, &content); err != nil {
		return nil, fmt.Errorf("decode content %s: %w", path, err)
	}
	return &content, nil
}

func (c *contentFile) host() blocks.Host {
	return blocks.Host{Class: c.Host.Class, ID: c.Host.ID}
}

func (c *contentFile) attach(ctx context.Context, svc blocks.Service) error {
	types, err := svc.ListBlockTypes(ctx)
	if err != nil {
		return err
	}
	byKeyname := make(map[string]*blocks.BlockType, len(types))
	for _, blockType := range types {
		byKeyname[blockType.Keyname] = blockType
	}

	for i, entry := range c.Instances {
		blockType, ok := byKeyname[blocks.NormalizeKeyname(entry.BlockType)]
		if !ok {
			return fmt.Errorf("instance %d: unknown block type %q", i, entry.BlockType)
		}
		values, err := rootValues(blockType, entry.Values)
		if err != nil {
			return fmt.Errorf("instance %d: %w", i, err)
		}
		if _, err := svc.AttachInstance(ctx, blocks.AttachInstanceInput{
			Host:        c.host(),
			Slot:        entry.Slot,
			BlockTypeID: &blockType.ID,
			Values:      values,
		}); err != nil {
			return fmt.Errorf("instance %d: %w", i, err)
		}
	}
	return nil
}

func rootValues(blockType *blocks.BlockType, raw map[string]string) ([]*blocks.FieldValue, error) {
	tree, err := blockType.Tree()
	if err != nil {
		return nil, err
	}
	var values []*blocks.FieldValue
	for _, node := range tree.Roots() {
		content, ok := raw[node.Keyname]
		if !ok {
			continue
		}
		values = append(values, &blocks.FieldValue{FieldID: node.ID, Content: &content})
	}
	return values, nil
}
