// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"fmt"
	"slices"

	"github.com/tfctl/catsync/internal/catalog"
)

type FlagValidatorType func(any) error

func FlagValidators(value any, validators ...FlagValidatorType) error {
	for _, v := range validators {
		if err := v(value); err != nil {
			return err
		}
	}
	return nil
}

func oneOf(value any, valid []string) error {
	s, _ := value.(string)
	if !slices.Contains(valid, s) {
		return fmt.Errorf("must be one of %v", valid)
	}
	return nil
}

func OutputValidator(value any) error {
	return oneOf(value, []string{"text", "json", "raw", "yaml"})
}

func FormatValidator(value any) error {
	return oneOf(value, []string{"json", "csv"})
}

func CollectionValidator(value any) error {
	s, _ := value.(string)
	if _, err := collectionKey(s); err != nil {
		return err
	}
	return nil
}

// IntervalValidator accepts sync intervals of at least one second, in
// milliseconds.
func IntervalValidator(value any) error {
	n, ok := value.(int)
	if !ok || n < 1000 {
		return fmt.Errorf("interval must be at least 1000 ms")
	}
	return nil
}

// collectionKey maps a collection name to its store key.
func collectionKey(name string) (string, error) {
	switch name {
	case catalog.KeyProducts:
		return catalog.KeyProducts, nil
	case "categories", catalog.KeyCategories:
		return catalog.KeyCategories, nil
	default:
		return "", fmt.Errorf("unknown collection %q: must be products or categories", name)
	}
}
