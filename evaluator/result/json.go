/*
Copyright 2025 CareSignal, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package result extracts JSON payloads from judge model responses. Models
// asked for a JSON object often wrap it in markdown fences or surrounding
// prose; these helpers strip that down to the object itself and unmarshal
// it type-safely.
package result

import (
	"bytes"
	"encoding/json"
	"strings"
)

// ExtractJSON extracts JSON content from a text response that may contain markdown code blocks.
// It looks for content between ```json and ``` markers, or returns the input trimmed if no markers are found.
func ExtractJSON(responseText string) string {
	// Search for the first ```json fence on its own line and collect content until the closing ```
	lines := strings.Split(responseText, "\n")
	var jsonBuffer bytes.Buffer
	inJSONBlock := false
	foundJSON := false

	for _, line := range lines {
		if !inJSONBlock && line == "```json" {
			inJSONBlock = true
			foundJSON = true
			continue
		}

		if inJSONBlock && line == "```" {
			break
		}

		if inJSONBlock {
			if jsonBuffer.Len() > 0 {
				jsonBuffer.WriteString("\n")
			}
			jsonBuffer.WriteString(line)
		}
	}

	if foundJSON {
		if jsonBuffer.Len() == 0 {
			// Found a ```json block but it was empty; callers treat "" as an error
			return ""
		}
		return strings.TrimSpace(jsonBuffer.String())
	}

	// Fallback: models sometimes inline the fences without newlines
	responseText = strings.TrimSpace(responseText)
	if strings.HasPrefix(responseText, "```json") && strings.HasSuffix(responseText, "```") {
		responseText = strings.TrimPrefix(responseText, "```json")
		responseText = strings.TrimSuffix(responseText, "```")
		responseText = strings.TrimSpace(responseText)
	} else {
		// These do nothing if the values aren't there, so always do it.
		responseText = strings.TrimPrefix(responseText, "```")
		responseText = strings.TrimSuffix(responseText, "```")
		responseText = strings.TrimSpace(responseText)
	}

	return responseText
}

// Extract extracts JSON content from a text response and unmarshals it into the provided type.
// It combines ExtractJSON with json.Unmarshal for convenience.
func Extract[T any](responseText string) (T, error) {
	var result T

	jsonContent := ExtractJSON(responseText)
	if err := json.Unmarshal([]byte(jsonContent), &result); err != nil {
		return result, err
	}

	return result, nil
}

// ExtractStrict behaves like Extract but rejects fields that are not part of
// the target type. Schema-constrained judge output must conform exactly, so
// an extra field is a conformance failure rather than something to drop.
func ExtractStrict[T any](responseText string) (T, error) {
	var result T

	jsonContent := ExtractJSON(responseText)
	dec := json.NewDecoder(strings.NewReader(jsonContent))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&result); err != nil {
		return result, err
	}

	return result, nil
}
