package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"image"
	"image/png"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/nerotide/pointlab"
)

var (
	addrFlag   = flag.String("addr", "", "HTTP listen address (overrides config)")
	configFlag = flag.String("config", "", "optional TOML config file")
	watchFlag  = flag.Bool("watch", false, "re-run the pipeline when the loaded file changes")
)

// Viewport names in broadcast order; the byte index prefixes each
// binary frame message.
var viewportNames = []string{"raw", "normals", "poisson", "ballpivot", "compareLeft", "compareRight"}

type app struct {
	cfg        pointlab.Config
	store      *pointlab.Store
	pipeline   *pointlab.Pipeline
	views      map[string]*pointlab.Viewport
	comparison *pointlab.Comparison

	mu          sync.Mutex
	clients     map[*websocket.Conn]bool
	currentPath string
	stopWatch   func() error
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func main() {
	flag.Parse()

	cfg, err := pointlab.LoadConfig(*configFlag)
	if err != nil {
		log.Fatalf("pointlab: %v", err)
	}
	if *addrFlag != "" {
		cfg.Addr = *addrFlag
	}

	a := newApp(cfg)

	if path := flag.Arg(0); path != "" {
		if _, err := os.Stat(path); err == nil {
			// Give the page a moment to connect before the first run.
			time.AfterFunc(500*time.Millisecond, func() { a.open(path) })
		} else {
			log.Printf("pointlab: initial file %s: %v", path, err)
		}
	}

	http.HandleFunc("/", a.serveHome)
	http.HandleFunc("/ws", a.handleWebSocket)

	log.Printf("pointlab: serving on http://%s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, nil); err != nil {
		log.Fatalf("pointlab: %v", err)
	}
}

func newApp(cfg pointlab.Config) *app {
	a := &app{
		cfg:     cfg,
		store:   pointlab.NewStore(),
		views:   make(map[string]*pointlab.Viewport),
		clients: make(map[*websocket.Conn]bool),
	}
	a.pipeline = pointlab.NewPipeline(pointlab.NewStdLibrary(), a.store)
	if cfg.PoissonDepth > 0 {
		a.pipeline.PoissonDepth = cfg.PoissonDepth
	}
	if len(cfg.RadiusLadder) > 0 {
		a.pipeline.RadiusLadder = cfg.RadiusLadder
	}

	for i, name := range viewportNames {
		r := pointlab.NewSoftwareRenderer(cfg.FrameWidth, cfg.FrameHeight)
		r.Background = cfg.BackgroundColor()
		r.PointSize = cfg.PointSize
		vp := pointlab.NewViewport(name, r)
		vp.RotationSpeed = cfg.RotationSpeed
		vp.TranslationSpeed = cfg.TranslationSpeed
		vp.ZoomSpeed = cfg.ZoomSpeed
		id := byte(i)
		vp.OnFrame = func(img image.Image) { a.broadcastFrame(id, img) }
		vp.OnError = func(err error) { a.broadcastStatus("error", err.Error(), 0) }
		a.views[name] = vp
	}
	a.comparison = pointlab.NewComparison(a.views["compareLeft"], a.views["compareRight"])
	return a
}

// open launches a pipeline run for the given file, superseding any
// run still in flight.
func (a *app) open(path string) {
	a.mu.Lock()
	a.currentPath = path
	a.mu.Unlock()

	run := a.pipeline.Start(path)
	go a.drain(run)
}

// drain consumes one run's event stream and applies the terminal
// result only when the run is still the latest.
func (a *app) drain(run *pointlab.Run) {
	for ev := range run.Events {
		switch ev := ev.(type) {
		case pointlab.Progress:
			a.broadcastStatus("progress", ev.Stage, ev.Percent)
		case pointlab.Completion:
			if ev.Gen != a.pipeline.Latest() {
				log.Printf("pointlab: discarding superseded run %d", ev.Gen)
				continue
			}
			if ev.Err != nil {
				a.broadcastStatus("error", ev.Err.Error(), 0)
				continue
			}
			a.applyAssets(ev.Set)
			a.broadcastStatus("complete", ev.Set.Source, 100)
		}
	}
}

func (a *app) applyAssets(set *pointlab.AssetSet) {
	a.views["raw"].SetGeometry(set.Raw)
	a.views["normals"].SetGeometry(set.WithNormals)
	a.views["poisson"].SetGeometry(set.Poisson)
	a.views["ballpivot"].SetGeometry(set.BallPivot)
	a.comparison.SetAssets(set)

	if *watchFlag {
		a.rewatch(set.Source)
	}
}

func (a *app) rewatch(path string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopWatch != nil {
		a.stopWatch()
		a.stopWatch = nil
	}
	stop, err := pointlab.WatchFile(path, 500*time.Millisecond, func() {
		log.Printf("pointlab: %s changed, re-running pipeline", path)
		a.open(path)
	})
	if err != nil {
		log.Printf("pointlab: watch %s: %v", path, err)
		return
	}
	a.stopWatch = stop
}

type inputMessage struct {
	Type     string  `json:"type"`
	Viewport string  `json:"viewport"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Button   int     `json:"button"`
	Mods     int     `json:"mods"`
	Delta    float64 `json:"delta"`
	Key      string  `json:"key"`
	Path     string  `json:"path"`
	Preset   string  `json:"preset"`
	Side     string  `json:"side"`
	Kind     string  `json:"kind"`
	On       bool    `json:"on"`
}

func (a *app) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("pointlab: websocket upgrade: %v", err)
		return
	}
	a.mu.Lock()
	a.clients[conn] = true
	a.mu.Unlock()
	defer func() {
		a.mu.Lock()
		delete(a.clients, conn)
		a.mu.Unlock()
		conn.Close()
	}()

	for {
		var msg inputMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		a.handleInput(msg)
	}
}

func (a *app) handleInput(msg inputMessage) {
	vp := a.views[msg.Viewport]
	switch msg.Type {
	case "open":
		a.open(msg.Path)
	case "pointerdown":
		if vp != nil {
			vp.PointerDown(msg.X, msg.Y, pointlab.PointerButton(msg.Button), pointlab.Modifiers(msg.Mods))
		}
	case "pointermove":
		if vp != nil {
			vp.PointerMove(msg.X, msg.Y)
		}
	case "pointerup":
		if vp != nil {
			vp.PointerUp()
		}
	case "wheel":
		if vp != nil {
			vp.Wheel(msg.Delta)
		}
	case "key":
		if vp != nil {
			vp.Key(msg.Key)
		}
	case "autorotate":
		if vp != nil {
			vp.SetAutoRotate(msg.On)
		}
	case "color":
		if vp != nil {
			vp.ApplyColor(pointlab.Presets[msg.Preset])
		}
	case "select":
		kind, ok := pointlab.ParseKind(msg.Kind)
		if !ok {
			return
		}
		side := pointlab.SideLeft
		if msg.Side == "right" {
			side = pointlab.SideRight
		}
		a.comparison.Select(side, kind)
	case "capture":
		if vp == nil {
			return
		}
		go func() {
			if err := pointlab.CaptureGIF(vp, msg.Path, a.cfg.CaptureSteps, a.cfg.CaptureDegrees); err != nil {
				a.broadcastStatus("error", err.Error(), 0)
				return
			}
			a.broadcastStatus("saved", msg.Path, 0)
		}()
	case "savemesh":
		kind, ok := pointlab.ParseKind(msg.Kind)
		if !ok {
			return
		}
		mesh, ok := a.store.Current().Get(kind).(*pointlab.Mesh)
		if !ok {
			a.broadcastStatus("error", "no mesh to save", 0)
			return
		}
		if err := pointlab.SaveMesh(msg.Path, mesh, a.cfg.ExportDecimate); err != nil {
			a.broadcastStatus("error", err.Error(), 0)
			return
		}
		a.broadcastStatus("saved", msg.Path, 0)
	case "snapshot":
		if vp == nil {
			return
		}
		img, err := vp.Still()
		if err != nil {
			a.broadcastStatus("error", err.Error(), 0)
			return
		}
		if err := pointlab.SaveImage(msg.Path, img); err != nil {
			a.broadcastStatus("error", err.Error(), 0)
			return
		}
		a.broadcastStatus("saved", msg.Path, 0)
	}
}

// broadcastFrame sends one binary frame message: viewport id byte
// followed by the PNG bytes.
func (a *app) broadcastFrame(id byte, img image.Image) {
	var buf bytes.Buffer
	buf.WriteByte(id)
	if err := png.Encode(&buf, img); err != nil {
		log.Printf("pointlab: frame encode: %v", err)
		return
	}
	data := buf.Bytes()

	a.mu.Lock()
	defer a.mu.Unlock()
	for conn := range a.clients {
		if err := conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
			conn.Close()
			delete(a.clients, conn)
		}
	}
}

func (a *app) broadcastStatus(kind, text string, percent int) {
	msg, err := json.Marshal(map[string]interface{}{
		"type": kind, "text": text, "percent": percent,
	})
	if err != nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	for conn := range a.clients {
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			conn.Close()
			delete(a.clients, conn)
		}
	}
}

func (a *app) serveHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(homePage))
}

const homePage = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>pointlab</title>
<style>
body { background: #111; color: #ddd; font-family: sans-serif; margin: 10px; }
.grid { display: grid; grid-template-columns: repeat(3, 1fr); gap: 8px; }
.pane { text-align: center; }
canvas { background: #1a1a1a; width: 100%; outline: none; }
#status { margin: 8px 0; min-height: 1.2em; }
select, button, input { background: #222; color: #ddd; border: 1px solid #444; margin: 2px; }
</style>
</head>
<body>
<div>
  <input id="path" size="40" placeholder="path/to/cloud.xyz">
  <button onclick="openFile()">Process</button>
  <span id="status"></span>
</div>
<div class="grid" id="grid"></div>
<script>
const names = ["raw", "normals", "poisson", "ballpivot", "compareLeft", "compareRight"];
const kinds = ["raw", "withNormals", "poisson", "ballPivot"];
const presets = ["default", "blue", "red", "green", "yellow", "white"];
const grid = document.getElementById("grid");
const canvases = [];
names.forEach((name, i) => {
  const pane = document.createElement("div");
  pane.className = "pane";
  const canvas = document.createElement("canvas");
  canvas.width = 640; canvas.height = 480; canvas.tabIndex = 0;
  pane.appendChild(canvas);
  const bar = document.createElement("div");
  bar.innerHTML = "<b>" + name + "</b>";
  const color = document.createElement("select");
  presets.forEach(p => color.add(new Option(p)));
  color.onchange = () => send({type: "color", viewport: name, preset: color.value});
  bar.appendChild(color);
  if (name.startsWith("compare")) {
    const sel = document.createElement("select");
    kinds.forEach(k => sel.add(new Option(k)));
    sel.value = name === "compareLeft" ? "poisson" : "ballPivot";
    sel.onchange = () => send({type: "select", side: name === "compareLeft" ? "left" : "right", kind: sel.value});
    bar.appendChild(sel);
  }
  const rot = document.createElement("button");
  rot.textContent = "rotate";
  let on = false;
  rot.onclick = () => { on = !on; send({type: "autorotate", viewport: name, on: on}); };
  bar.appendChild(rot);
  pane.appendChild(bar);
  grid.appendChild(pane);
  canvases.push(canvas);

  canvas.onpointerdown = e => { canvas.setPointerCapture(e.pointerId);
    send({type: "pointerdown", viewport: name, x: e.offsetX, y: e.offsetY,
          button: e.button === 1 ? 1 : 0, mods: e.shiftKey ? 1 : 0}); };
  canvas.onpointermove = e => send({type: "pointermove", viewport: name, x: e.offsetX, y: e.offsetY});
  canvas.onpointerup = () => send({type: "pointerup", viewport: name});
  canvas.onwheel = e => { e.preventDefault(); send({type: "wheel", viewport: name, delta: -e.deltaY}); };
  canvas.onkeydown = e => send({type: "key", viewport: name, key: e.key});
});

const ws = new WebSocket("ws://" + location.host + "/ws");
ws.binaryType = "blob";
ws.onmessage = async e => {
  if (typeof e.data === "string") {
    const msg = JSON.parse(e.data);
    document.getElementById("status").textContent =
      msg.type === "progress" ? msg.text + " (" + msg.percent + "%)" : msg.type + ": " + msg.text;
    return;
  }
  const buf = new Uint8Array(await e.data.arrayBuffer());
  const id = buf[0];
  const blob = new Blob([buf.slice(1)], {type: "image/png"});
  const img = await createImageBitmap(blob);
  const canvas = canvases[id];
  canvas.getContext("2d").drawImage(img, 0, 0, canvas.width, canvas.height);
};
function send(msg) { if (ws.readyState === WebSocket.OPEN) ws.send(JSON.stringify(msg)); }
function openFile() { send({type: "open", path: document.getElementById("path").value}); }
</script>
</body>
</html>
`
