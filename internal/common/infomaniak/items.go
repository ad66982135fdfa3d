package infomaniak

// ExtractItems unwraps the Infomaniak response envelope: a data array yields its
// elements, a data object yields one record, and anything else (no data key,
// scalar data) yields the envelope itself.
func ExtractItems(resp map[string]interface{}) []interface{} {
	data, ok := resp["data"]
	if !ok {
		return []interface{}{resp}
	}
	switch d := data.(type) {
	case []interface{}:
		return d
	case map[string]interface{}:
		return []interface{}{d}
	default:
		return []interface{}{resp}
	}
}

// NormalizeResponse flattens one response into records. Arrays always emit one
// record per element; objects are either kept whole or unwrapped by ExtractItems.
func NormalizeResponse(resp interface{}, returnFullResponse bool) []interface{} {
	switch r := resp.(type) {
	case nil:
		return []interface{}{}
	case []interface{}:
		return r
	case map[string]interface{}:
		if returnFullResponse {
			return []interface{}{r}
		}
		return ExtractItems(r)
	default:
		return []interface{}{r}
	}
}

// envelopeInt reads total/pages style counters from a response envelope.
func envelopeInt(resp interface{}, key string) (int, bool) {
	m, ok := resp.(map[string]interface{})
	if !ok {
		return 0, false
	}
	return toInt(m[key])
}
