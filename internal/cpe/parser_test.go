package cpe

import "testing"

func TestParseAsset(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		wantVendor  string
		wantProduct string
		wantVersion string
	}{
		{
			name:        "vendor product version",
			raw:         "Siemens SIMATIC S7-1500 Firmware v2.9.4",
			wantVendor:  "siemens",
			wantProduct: "simatic",
			wantVersion: "2.9.4",
		},
		{
			name:        "known vendor repeated is self-named",
			raw:         "eWon eWon Firmware 10.0s0",
			wantVendor:  "ewon",
			wantProduct: "ewon",
			wantVersion: "10.0s0",
		},
		{
			name:        "apache http server joins two stop-word tokens",
			raw:         "Apache HTTP Server 2.4.51",
			wantVendor:  "apache",
			wantProduct: "http server",
			wantVersion: "2.4.51",
		},
		{
			name:        "lone known vendor is also the product",
			raw:         "nginx 1.24.0",
			wantVendor:  "nginx",
			wantProduct: "nginx",
			wantVersion: "1.24.0",
		},
		{
			name:        "versionless single token",
			raw:         "OpenSSL",
			wantVendor:  "openssl",
			wantProduct: "openssl",
			wantVersion: "",
		},
		{
			name:        "empty input",
			raw:         "",
			wantVendor:  "",
			wantProduct: "",
			wantVersion: "",
		},
		{
			name:        "pure version string has no vendor or product",
			raw:         "2.4.51",
			wantVendor:  "",
			wantProduct: "",
			wantVersion: "2.4.51",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseAsset(tt.raw)

			if got.Vendor != tt.wantVendor {
				t.Errorf("ParseAsset(%q).Vendor = %q, want %q", tt.raw, got.Vendor, tt.wantVendor)
			}
			if got.Product != tt.wantProduct {
				t.Errorf("ParseAsset(%q).Product = %q, want %q", tt.raw, got.Product, tt.wantProduct)
			}
			if got.Version != tt.wantVersion {
				t.Errorf("ParseAsset(%q).Version = %q, want %q", tt.raw, got.Version, tt.wantVersion)
			}

			for _, tok := range got.Tokens {
				if tok == got.Version {
					t.Errorf("ParseAsset(%q).Tokens contains version %q", tt.raw, tok)
				}
			}
		})
	}
}

func TestParseAssetEmptyInputHasNoOptionalFields(t *testing.T) {
	got := ParseAsset("")

	if got.HasVendor() || got.HasProduct() || got.HasVersion() {
		t.Errorf("ParseAsset(\"\") = %+v, want all optional fields absent", got)
	}
	if len(got.Tokens) != 0 {
		t.Errorf("ParseAsset(\"\").Tokens = %v, want empty", got.Tokens)
	}
}
