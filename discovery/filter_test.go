package discovery

import "testing"

func TestFilterMatch(t *testing.T) {
	record := Record{
		Registration: "reg-1",
		Name:         "users",
		Type:         "http-endpoint",
		Status:       StatusUp,
		Metadata: map[string]any{
			"zone":    "cn-east",
			"version": "2.1",
		},
	}

	tests := []struct {
		name   string
		filter Filter
		record Record
		want   bool
	}{
		{"nil filter matches up record", nil, record, true},
		{"empty filter matches up record", Filter{}, record, true},
		{"name match", Filter{"name": "users"}, record, true},
		{"name mismatch", Filter{"name": "orders"}, record, false},
		{"type match", Filter{"type": "http-endpoint"}, record, true},
		{"registration match", Filter{"registration": "reg-1"}, record, true},
		{"metadata match", Filter{"zone": "cn-east"}, record, true},
		{"metadata mismatch", Filter{"zone": "cn-north"}, record, false},
		{"metadata wildcard requires presence", Filter{"owner": "*"}, record, false},
		{"metadata wildcard with presence", Filter{"zone": "*"}, record, true},
		{"multiple entries all match", Filter{"name": "users", "zone": "cn-east"}, record, true},
		{"multiple entries one mismatch", Filter{"name": "users", "zone": "cn-north"}, record, false},
		{
			"default status excludes down",
			Filter{"name": "users"},
			Record{Name: "users", Status: StatusDown},
			false,
		},
		{
			"default status excludes out of service",
			Filter{},
			Record{Name: "users", Status: StatusOutOfService},
			false,
		},
		{
			"explicit status matches down",
			Filter{"status": "DOWN"},
			Record{Name: "users", Status: StatusDown},
			true,
		},
		{
			"explicit status lowercase",
			Filter{"status": "down"},
			Record{Name: "users", Status: StatusDown},
			true,
		},
		{
			"status wildcard matches any",
			Filter{"status": "*"},
			Record{Name: "users", Status: StatusOutOfService},
			true,
		},
		{
			"explicit status mismatch",
			Filter{"status": "UP"},
			Record{Name: "users", Status: StatusDown},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Match(tt.record); got != tt.want {
				t.Errorf("Match() = %v, want %v (filter=%s)", got, tt.want, tt.filter)
			}
		})
	}
}

func TestFilterMatchNumericMetadata(t *testing.T) {
	record := Record{
		Name:     "cache",
		Status:   StatusUp,
		Metadata: map[string]any{"port": 6379},
	}

	// 字符串形式的过滤值应当匹配数字元数据
	if !(Filter{"port": "6379"}).Match(record) {
		t.Error("string filter value should match numeric metadata")
	}
	if !(Filter{"port": 6379}).Match(record) {
		t.Error("numeric filter value should match numeric metadata")
	}
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in   string
		want Status
	}{
		{"UP", StatusUp},
		{"up", StatusUp},
		{"DOWN", StatusDown},
		{"OUT_OF_SERVICE", StatusOutOfService},
		{"out_of_service", StatusOutOfService},
		{"bogus", StatusUnknown},
		{"", StatusUnknown},
	}

	for _, tt := range tests {
		if got := ParseStatus(tt.in); got != tt.want {
			t.Errorf("ParseStatus(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRecordClone(t *testing.T) {
	original := Record{
		Registration: "reg-1",
		Name:         "users",
		Location:     map[string]any{"endpoint": "http://a:8080", "nested": map[string]any{"k": "v"}},
		Metadata:     map[string]any{"tags": []any{"a", "b"}},
	}

	clone := original.Clone()
	clone.Location["endpoint"] = "http://b:9090"
	clone.Location["nested"].(map[string]any)["k"] = "changed"
	clone.Metadata["tags"].([]any)[0] = "changed"

	if original.Location["endpoint"] != "http://a:8080" {
		t.Error("clone mutation leaked into original location")
	}
	if original.Location["nested"].(map[string]any)["k"] != "v" {
		t.Error("clone mutation leaked into nested map")
	}
	if original.Metadata["tags"].([]any)[0] != "a" {
		t.Error("clone mutation leaked into metadata slice")
	}
}
