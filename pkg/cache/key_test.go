package cache

import (
	"net/url"
	"testing"
)

func TestKey_String(t *testing.T) {
	tests := []struct {
		name string
		key  Key
		want string
	}{
		{
			name: "endpoint no params",
			key: Key{
				Endpoint: "/api/v2/network/detail",
			},
			want: "wigle:api/v2/network/detail",
		},
		{
			name: "endpoint with one param",
			key: Key{
				Endpoint: "/api/v2/network/detail",
				QueryParams: url.Values{
					"netid": []string{"aa:bb:cc:dd:ee:ff"},
				},
			},
			want: "wigle:api/v2/network/detail:netid=aa:bb:cc:dd:ee:ff",
		},
		{
			name: "multiple params sorted",
			key: Key{
				Endpoint: "/api/v2/network/detail",
				QueryParams: url.Values{
					"operator": []string{"310"},
					"cid":      []string{"56789"},
					"lac":      []string{"1234"},
				},
			},
			want: "wigle:api/v2/network/detail:cid=56789:lac=1234:operator=310",
		},
		{
			name: "empty endpoint",
			key:  Key{},
			want: "wigle",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKey_StringDeterministic(t *testing.T) {
	key := Key{
		Endpoint: "/api/v2/network/detail",
		QueryParams: url.Values{
			"netid": []string{"aa:bb"},
			"type":  []string{"WIFI"},
		},
	}

	first := key.String()
	for i := 0; i < 10; i++ {
		if got := key.String(); got != first {
			t.Fatalf("String() = %q, want stable %q", got, first)
		}
	}
}
