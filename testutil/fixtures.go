package testutil

// Identity record fixtures in the shapes the client may find on disk.
const (
	// IdentityRecordV1 is a current, versioned record
	IdentityRecordV1 = `{"version":1,"identity":{"userId":"alex_chen_42","name":"Alex Chen","role":"mentee","context":"grow as an engineer"}}`

	// IdentityRecordLegacy is the unversioned shape written by earlier clients
	IdentityRecordLegacy = `{"userId":"sam_ortiz_7","name":"Sam Ortiz","role":"mentor","context":"ten years of backend work"}`

	// IdentityRecordFutureVersion carries a version this client does not know
	IdentityRecordFutureVersion = `{"version":99,"identity":{"userId":"alex_chen_42","name":"Alex Chen","role":"mentee","context":"grow"}}`

	// IdentityRecordBadRole has an unknown role
	IdentityRecordBadRole = `{"version":1,"identity":{"userId":"alex_chen_42","name":"Alex Chen","role":"admin","context":"grow"}}`

	// IdentityRecordTruncated is cut off mid-write
	IdentityRecordTruncated = `{"version":1,"identity":{"userId":"alex_`
)

// GraphFixture is a small /graph payload keyed by user id
const GraphFixture = `{
  "mentor_alice": {"directed": true, "nodes": [{"id": "n1", "label": "Goal"}], "links": []},
  "mentee_frank": {"directed": true, "nodes": [], "links": []}
}`
