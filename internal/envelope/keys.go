package envelope

// Storage keys. All but KeyToken and KeyUser are user-scoped.
const (
	KeyToken          = "hs_token"
	KeyUser           = "hs_user"
	KeyLastEnvelope   = "hs_last_envelope"
	KeyLastResult     = "hs_last_result"
	KeyLastReportJSON = "hs_last_report_json"
	KeyLastImage      = "hs_last_image"
	KeyLastImageB64   = "hs_last_image_b64"
	KeyLastRaw        = "hs_last_raw"
	KeyLastRaws       = "hs_last_raws"

	previewKeyPrefix = "hs_scan_preview_"
)

// lastScanKeys are cleared together by Store.Clear.
var lastScanKeys = []string{
	KeyLastEnvelope,
	KeyLastResult,
	KeyLastReportJSON,
	KeyLastImage,
	KeyLastImageB64,
	KeyLastRaw,
	KeyLastRaws,
}

// PreviewKey is the per-scan preview cache key used by the history view.
func PreviewKey(scanID string) string {
	return previewKeyPrefix + scanID
}
