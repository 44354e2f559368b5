package web

import "html/template"

type indexData struct {
	Title    string
	HasChart bool
	Status   string
	Kind     string
	Fallback bool
}

var indexTmpl = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 2em; }
#status.error { color: #b00020; }
#status.fallback { color: #a15c00; }
iframe { border: 0; width: 100%; height: 560px; }
form { display: inline-block; margin-right: 1.5em; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p id="status" class="{{.Kind}}{{if .Fallback}} fallback{{end}}">{{.Status}}</p>

<form method="post" action="/load/remote">
  <button type="submit">Load from service</button>
</form>
<form method="post" action="/load/file" enctype="multipart/form-data">
  <input type="file" name="file" accept=".json,application/json" required>
  <button type="submit">Show file</button>
</form>
<form method="post" action="/load/predict" enctype="multipart/form-data">
  <input type="file" name="file" accept=".json,application/json" required>
  <button type="submit">Predict from file</button>
</form>

<iframe id="chart" src="{{if .HasChart}}/chart{{else}}about:blank{{end}}"></iframe>
<p><a href="/chart.png">PNG</a> | <a href="/chart.svg">SVG</a> | <a href="/api/dataset">JSON</a></p>

<script>
(function () {
  var status = document.getElementById("status");
  var frame = document.getElementById("chart");
  var proto = location.protocol === "https:" ? "wss://" : "ws://";
  var ws = new WebSocket(proto + location.host + "/ws");
  ws.onmessage = function (ev) {
    var s = JSON.parse(ev.data);
    if (s.superseded) {
      return;
    }
    status.textContent = s.message;
    status.className = s.kind + (s.fallback ? " fallback" : "");
    if (s.kind === "success") {
      frame.src = "/chart?" + Date.now();
    }
  };
})();
</script>
</body>
</html>
`))
