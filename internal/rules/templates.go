package rules

import "github.com/woozymasta/wienmap/internal/popup"

var sightsPopup = popup.MustParse("sights", `
{{with .THUMBNAIL}}<img src="{{.}}" alt="*">{{end}}
<h4>{{if .WEITERE_INF}}<a href="{{.WEITERE_INF}}" target="wien">{{.NAME}}</a>{{else}}{{.NAME}}{{end}}</h4>
{{with .ADRESSE}}<address>{{.}}</address>{{end}}
`,
	popup.Field{Key: "NAME", Required: true},
	popup.Field{Key: "THUMBNAIL"},
	popup.Field{Key: "WEITERE_INF"},
	popup.Field{Key: "ADRESSE"},
)

var linesPopup = popup.MustParse("lines", `
<h4><i class="fa-solid fa-bus"></i> {{.LINE_NAME}}</h4>
<p>
<i class="fa-regular fa-circle-stop"></i> {{.FROM_NAME}}<br>
<i class="fa-solid fa-down-long"></i><br>
<i class="fa-regular fa-circle-stop"></i> {{.TO_NAME}}<br>
</p>
`,
	popup.Field{Key: "LINE_NAME", Required: true},
	popup.Field{Key: "FROM_NAME"},
	popup.Field{Key: "TO_NAME"},
)

var stopsPopup = popup.MustParse("stops", `
<h4><i class="fa-solid fa-bus"></i> {{.LINE_NAME}}</h4>
<p>{{.STAT_ID}} {{.STAT_NAME}}</p>
`,
	popup.Field{Key: "STAT_NAME", Required: true},
	popup.Field{Key: "STAT_ID"},
	popup.Field{Key: "LINE_NAME"},
)

var zonesPopup = popup.MustParse("zones", `
<h4>Fußgängerzone {{.ADRESSE}}</h4>
<p><i class="fa-regular fa-clock"></i> {{.ZEITRAUM}}</p>
<p><i class="fa-solid fa-circle-info"></i> {{.AUSN_TEXT}}</p>
`,
	popup.Field{Key: "ADRESSE", Required: true},
	popup.Field{Key: "ZEITRAUM", Default: "dauerhaft"},
	popup.Field{Key: "AUSN_TEXT", Default: "ohne Ausnahme"},
)

var hotelsPopup = popup.MustParse("hotels", `
<h3>{{.BETRIEB}}</h3>
<h4>{{.BETRIEBSART_TXT}} {{.KATEGORIE_TXT}}</h4>
<hr>
{{with .ADRESSE}}Addr.: {{.}}<br>{{end}}
{{with .KONTAKT_TEL}}Tel.: <a href="tel:{{.}}">{{.}}</a><br>{{end}}
{{with .KONTAKT_EMAIL}}<a href="mailto:{{.}}">{{.}}</a><br>{{end}}
{{with .WEBLINK1}}<a href="{{.}}" target="wien">Homepage</a><br>{{end}}
`,
	popup.Field{Key: "BETRIEB", Required: true},
	popup.Field{Key: "BETRIEBSART_TXT"},
	popup.Field{Key: "KATEGORIE_TXT"},
	popup.Field{Key: "ADRESSE"},
	popup.Field{Key: "KONTAKT_TEL"},
	popup.Field{Key: "KONTAKT_EMAIL"},
	popup.Field{Key: "WEBLINK1"},
)
