// Package fixtures loads reference data (tags and ingredients) from JSON or CSV files.
package fixtures

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gosimple/slug"

	"foodgram/internal/logger"
	"foodgram/internal/models"
)

// Format is the encoding of a fixture file.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unsupported fixture file %q: want .json or .csv", path)
	}
}

// IngredientStore saves ingredients, skipping ones already present.
type IngredientStore interface {
	Load(ctx context.Context, ingredients []models.Ingredient) (int64, error)
}

// TagStore saves tags, skipping ones already present.
type TagStore interface {
	Load(ctx context.Context, tags []models.Tag) (int64, error)
}

var validate = validator.New()

type ingredientRecord struct {
	Name            string `json:"name" validate:"required,max=200"`
	MeasurementUnit string `json:"measurement_unit" validate:"required,max=50"`
}

type tagRecord struct {
	Name  string `json:"name" validate:"required,max=150"`
	Color string `json:"color" validate:"required,hexcolor,len=7"`
	Slug  string `json:"slug" validate:"omitempty,max=200"`
}

// ReadIngredients decodes ingredients. CSV rows are "name,measurement_unit"; a header row is optional.
func ReadIngredients(r io.Reader, format Format) ([]models.Ingredient, error) {
	var records []ingredientRecord
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&records); err != nil {
			return nil, fmt.Errorf("failed to decode ingredients: %w", err)
		}
	case FormatCSV:
		rows, err := readCSV(r, 2, "name")
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			records = append(records, ingredientRecord{Name: row[0], MeasurementUnit: row[1]})
		}
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}

	ingredients := make([]models.Ingredient, 0, len(records))
	for i, rec := range records {
		rec.Name = strings.TrimSpace(rec.Name)
		rec.MeasurementUnit = strings.TrimSpace(rec.MeasurementUnit)
		if err := validate.Struct(rec); err != nil {
			return nil, fmt.Errorf("ingredient %d: %w", i+1, err)
		}
		ingredients = append(ingredients, models.Ingredient{Name: rec.Name, MeasurementUnit: rec.MeasurementUnit})
	}
	return ingredients, nil
}

// ReadTags decodes tags. CSV rows are "name,color[,slug]". A missing slug is derived from the name.
func ReadTags(r io.Reader, format Format) ([]models.Tag, error) {
	var records []tagRecord
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&records); err != nil {
			return nil, fmt.Errorf("failed to decode tags: %w", err)
		}
	case FormatCSV:
		rows, err := readCSV(r, 2, "name")
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			rec := tagRecord{Name: row[0], Color: row[1]}
			if len(row) > 2 {
				rec.Slug = row[2]
			}
			records = append(records, rec)
		}
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}

	tags := make([]models.Tag, 0, len(records))
	for i, rec := range records {
		rec.Name = strings.TrimSpace(rec.Name)
		rec.Color = strings.ToUpper(strings.TrimSpace(rec.Color))
		rec.Slug = strings.TrimSpace(rec.Slug)
		if rec.Slug == "" {
			rec.Slug = slug.Make(rec.Name)
		}
		if err := validate.Struct(rec); err != nil {
			return nil, fmt.Errorf("tag %d: %w", i+1, err)
		}
		tags = append(tags, models.Tag{Name: rec.Name, Color: rec.Color, Slug: rec.Slug})
	}
	return tags, nil
}

// readCSV returns rows with at least minFields columns, dropping a leading header row whose
// first cell equals header.
func readCSV(r io.Reader, minFields int, header string) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows [][]string
	for line := 1; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv: %w", err)
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(row[0]), header) {
			continue
		}
		if len(row) < minFields {
			return nil, fmt.Errorf("csv line %d: want at least %d fields, got %d", line, minFields, len(row))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// LoadIngredientsFile reads an ingredient fixture file and stores its contents.
func LoadIngredientsFile(ctx context.Context, path string, store IngredientStore) (int64, error) {
	format, err := FormatOf(path)
	if err != nil {
		return 0, err
	}
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open fixture: %w", err)
	}
	defer f.Close()

	ingredients, err := ReadIngredients(f, format)
	if err != nil {
		return 0, err
	}
	n, err := store.Load(ctx, ingredients)
	if err != nil {
		return 0, err
	}
	logger.Log.Infow("ingredients loaded", "file", path, "read", len(ingredients), "created", n)
	return n, nil
}

// LoadTagsFile reads a tag fixture file and stores its contents.
func LoadTagsFile(ctx context.Context, path string, store TagStore) (int64, error) {
	format, err := FormatOf(path)
	if err != nil {
		return 0, err
	}
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open fixture: %w", err)
	}
	defer f.Close()

	tags, err := ReadTags(f, format)
	if err != nil {
		return 0, err
	}
	n, err := store.Load(ctx, tags)
	if err != nil {
		return 0, err
	}
	logger.Log.Infow("tags loaded", "file", path, "read", len(tags), "created", n)
	return n, nil
}
