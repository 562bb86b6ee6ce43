package util

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// NewJobID generates a unique bulk job identifier.
func NewJobID() string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		// Degrade to a purely time-based suffix
		return fmt.Sprintf("bulk-%d", time.Now().UnixNano())
	}
	return fmt.Sprintf("bulk-%d-%s", time.Now().UnixMilli(), hex.EncodeToString(buf))
}

// NewItemID generates a queue item identifier from its job, platform and
// creation time.
func NewItemID(jobID, platform string, at time.Time) string {
	return fmt.Sprintf("%s:%s:%d", jobID, platform, at.UnixNano())
}

// GenerateSlug creates a URL-friendly slug from title
func GenerateSlug(title string) string {
	// Convert to lowercase
	slug := strings.ToLower(title)

	// Replace spaces and special characters with hyphens
	reg := regexp.MustCompile(`[^a-z0-9]+`)
	slug = reg.ReplaceAllString(slug, "-")

	// Remove leading/trailing hyphens
	slug = strings.Trim(slug, "-")

	// Limit length
	if len(slug) > 50 {
		slug = slug[:50]
		slug = strings.Trim(slug, "-")
	}

	return slug
}

// ParseTags parses tag strings into arrays
func ParseTags(tagStr string) []string {
	if tagStr == "" {
		return []string{}
	}

	// Remove brackets if present
	tagStr = strings.Trim(tagStr, "[]")

	// Split by comma and clean up
	tags := strings.Split(tagStr, ",")
	var cleanTags []string

	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		tag = strings.Trim(tag, "\"'") // Remove quotes
		if tag != "" {
			cleanTags = append(cleanTags, tag)
		}
	}

	return cleanTags
}
