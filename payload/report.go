package payload

// Form field names expected by the reporting endpoint.
const (
	keyAccountID     = "ID"
	keyAccountSecret = "PASSWORD"
	keyAction        = "action"
	keyDateUTC       = "dateutc"
	keyTempF         = "tempf"
	keyHumidity      = "humidity"
	keyDewPointF     = "dewptf"

	valUpdateRaw = "updateraw"
	valNow       = "now" // server-side timestamping
)

// WriteReport builds the full upload body in the fixed field order:
// account id, account secret, action marker, report-now time marker,
// Fahrenheit temperature, humidity, Fahrenheit dew point. Credentials are
// percent-encoded; the caller converts temperatures to Fahrenheit first.
// Check b.Err() before using the body.
func WriteReport(b *Builder, accountID, accountSecret string, tempF, humidity, dewPointF float32) {
	b.Raw(keyAccountID)
	b.Raw("=")
	b.Escaped(accountID)

	b.Raw("&")
	b.Raw(keyAccountSecret)
	b.Raw("=")
	b.Escaped(accountSecret)

	b.Raw("&")
	b.Raw(keyAction)
	b.Raw("=")
	b.Raw(valUpdateRaw)

	b.Raw("&")
	b.Raw(keyDateUTC)
	b.Raw("=")
	b.Raw(valNow)

	b.Raw("&")
	b.Raw(keyTempF)
	b.Raw("=")
	b.Fixed2(tempF)

	b.Raw("&")
	b.Raw(keyHumidity)
	b.Raw("=")
	b.Fixed2(humidity)

	b.Raw("&")
	b.Raw(keyDewPointF)
	b.Raw("=")
	b.Fixed2(dewPointF)
}

// WorstCaseLen returns a safe buffer size for WriteReport given the maximum
// credential length: every credential byte may expand to three bytes, the
// rest of the body is fixed-order keys plus three formatted numbers.
func WorstCaseLen(maxCredLen int) int {
	const fixed = len(keyAccountID) + len(keyAccountSecret) + len(keyAction) +
		len(keyDateUTC) + len(keyTempF) + len(keyHumidity) + len(keyDewPointF) +
		len(valUpdateRaw) + len(valNow) + 6 /* '&' */ + 7 /* '=' */
	const numLen = 16 // conv.Fixed2 scratch bound
	return fixed + 2*3*maxCredLen + 3*numLen
}
