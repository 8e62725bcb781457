// ABOUTME: Tests that the hand-declared service descriptors and wire structs match proto/docket.proto
// ABOUTME: Compares services, methods, request and response types, and JSON field names

package rpc

import (
	"os"
	"reflect"
	"regexp"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
)

const protoPath = "../../proto/docket.proto"

var (
	serviceBlockRe = regexp.MustCompile(`(?ms)^service (\w+) \{\n(.*?)^\}`)
	rpcRe          = regexp.MustCompile(`rpc (\w+)\(([\w.]+)\) returns \(([\w.]+)\);`)
	messageBlockRe = regexp.MustCompile(`(?ms)^message (\w+) \{\n(.*?)^\}`)
	fieldRe        = regexp.MustCompile(`(?m)^\s+(?:optional |repeated )?[\w.]+ (\w+) = \d+;`)
)

type protoRPC struct {
	name, in, out string
}

func readProto(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(protoPath)
	require.NoError(t, err)
	return string(data)
}

func protoServices(src string) map[string][]protoRPC {
	out := make(map[string][]protoRPC)
	for _, m := range serviceBlockRe.FindAllStringSubmatch(src, -1) {
		for _, r := range rpcRe.FindAllStringSubmatch(m[2], -1) {
			out[m[1]] = append(out[m[1]], protoRPC{name: r[1], in: r[2], out: r[3]})
		}
	}
	return out
}

// lowerCamel converts a proto field name to its JSON name.
func lowerCamel(field string) string {
	parts := strings.Split(field, "_")
	for i := 1; i < len(parts); i++ {
		parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
	}
	return strings.Join(parts, "")
}

func shortName(protoType string) string {
	return protoType[strings.LastIndex(protoType, ".")+1:]
}

func TestServiceDescs_MatchProto(t *testing.T) {
	services := protoServices(readProto(t))

	descs := []*grpc.ServiceDesc{
		&AuthService_ServiceDesc,
		&DocumentService_ServiceDesc,
		&LegalDocumentService_ServiceDesc,
		&AdminService_ServiceDesc,
	}
	require.Len(t, services, len(descs))

	for _, desc := range descs {
		t.Run(desc.ServiceName, func(t *testing.T) {
			assert.Equal(t, ProtoFile, desc.Metadata)

			rpcs, ok := services[strings.TrimPrefix(desc.ServiceName, "docket.")]
			require.True(t, ok, "service missing from proto")

			var declared []string
			for _, m := range desc.Methods {
				declared = append(declared, m.MethodName)
			}
			var want []string
			for _, r := range rpcs {
				want = append(want, r.name)
			}
			assert.Equal(t, want, declared)

			iface := reflect.TypeOf(desc.HandlerType).Elem()
			for _, r := range rpcs {
				method, ok := iface.MethodByName(r.name)
				require.True(t, ok, r.name)
				assert.Equal(t, shortName(r.in), method.Type.In(1).Elem().Name(), r.name+" request")
				assert.Equal(t, shortName(r.out), method.Type.Out(0).Elem().Name(), r.name+" response")
			}
		})
	}
}

func TestMessages_MatchProto(t *testing.T) {
	types := map[string]any{
		"User":                           User{},
		"LoginRequest":                   LoginRequest{},
		"RegisterRequest":                RegisterRequest{},
		"AuthResponse":                   AuthResponse{},
		"ValidateTokenRequest":           ValidateTokenRequest{},
		"ValidateTokenResponse":          ValidateTokenResponse{},
		"HistoryEntry":                   HistoryEntry{},
		"Comment":                        Comment{},
		"Document":                       Document{},
		"CreateDocumentRequest":          CreateDocumentRequest{},
		"GetDocumentRequest":             GetDocumentRequest{},
		"ListDocumentsRequest":           ListDocumentsRequest{},
		"ListDocumentsResponse":          ListDocumentsResponse{},
		"UpdateDocumentStatusRequest":    UpdateDocumentStatusRequest{},
		"AddCommentRequest":              AddCommentRequest{},
		"SearchLegalDocumentsRequest":    SearchLegalDocumentsRequest{},
		"LegalDocument":                  LegalDocument{},
		"SearchLegalDocumentsResponse":   SearchLegalDocumentsResponse{},
		"ImportLegalDocumentRequest":     ImportLegalDocumentRequest{},
		"ImportLegalDocumentResponse":    ImportLegalDocumentResponse{},
		"GetLegalDocumentDetailsRequest": GetLegalDocumentDetailsRequest{},
		"ListUsersResponse":              ListUsersResponse{},
		"DeleteUserRequest":              DeleteUserRequest{},
		"ListAuditLogRequest":            ListAuditLogRequest{},
		"AuditEntry":                     AuditEntry{},
		"ListAuditLogResponse":           ListAuditLogResponse{},
	}

	blocks := messageBlockRe.FindAllStringSubmatch(readProto(t), -1)
	var names []string
	for _, m := range blocks {
		names = append(names, m[1])
	}
	var goNames []string
	for name := range types {
		goNames = append(goNames, name)
	}
	assert.ElementsMatch(t, goNames, names)

	for _, m := range blocks {
		name := m[1]
		t.Run(name, func(t *testing.T) {
			v, ok := types[name]
			require.True(t, ok, "no Go struct for message")

			var want []string
			for _, f := range fieldRe.FindAllStringSubmatch(m[2], -1) {
				want = append(want, lowerCamel(f[1]))
			}

			var got []string
			rt := reflect.TypeOf(v)
			for i := range rt.NumField() {
				tag, _, _ := strings.Cut(rt.Field(i).Tag.Get("json"), ",")
				got = append(got, tag)
			}
			slices.Sort(want)
			slices.Sort(got)
			assert.Equal(t, want, got)
		})
	}
}

func TestLowerCamel(t *testing.T) {
	assert.Equal(t, "id", lowerCamel("id"))
	assert.Equal(t, "statusHistory", lowerCamel("status_history"))
	assert.Equal(t, "totalElements", lowerCamel("total_elements"))
}
