package config

import "testing"

func TestValidate_RequiredFields(t *testing.T) {
	cfg := Config{NotionAPIKey: "k", NotionParentPageID: "p", PagemarkAPIKey: "a"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	missing := []Config{
		{NotionParentPageID: "p", PagemarkAPIKey: "a"},
		{NotionAPIKey: "k", PagemarkAPIKey: "a"},
		{NotionAPIKey: "k", NotionParentPageID: "p"},
	}
	for i, cfg := range missing {
		if err := cfg.Validate(); err == nil {
			t.Errorf("case %d: expected error for missing required field", i)
		}
	}
}

func TestValidate_R2AllOrNone(t *testing.T) {
	base := Config{NotionAPIKey: "k", NotionParentPageID: "p", PagemarkAPIKey: "a"}

	partial := base
	partial.R2AccountID = "acct"
	if err := partial.Validate(); err == nil {
		t.Error("expected error for partial R2 config")
	}

	full := base
	full.R2AccountID = "acct"
	full.R2AccessKeyID = "key"
	full.R2SecretAccessKey = "secret"
	full.R2BucketName = "bucket"
	full.R2PublicURL = "https://img.example.com"
	if err := full.Validate(); err != nil {
		t.Errorf("unexpected error for full R2 config: %v", err)
	}

	if !full.R2Enabled() {
		t.Error("expected R2Enabled for full config")
	}
	if base.R2Enabled() {
		t.Error("expected R2 disabled without account id")
	}
}
