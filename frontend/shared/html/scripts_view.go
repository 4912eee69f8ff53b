package html

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/a-h/templ"
)

// ToastScript dismisses toasts on click or after the container's duration.
func ToastScript() string {
	return `<script>
(function () {
  var box = document.getElementById("toasts");
  if (!box) return;
  var ms = parseInt(box.getAttribute("data-duration"), 10) || 5000;
  var toasts = box.querySelectorAll(".toast");
  for (var i = 0; i < toasts.length; i++) {
    (function (t) {
      var btn = t.querySelector(".toast-close");
      if (btn) btn.addEventListener("click", function () { t.remove(); });
      setTimeout(function () { t.remove(); }, ms);
    })(toasts[i]);
  }
  if (window.history && window.history.replaceState) {
    var u = new URL(window.location.href);
    if (u.searchParams.has("status") || u.searchParams.has("error")) {
      u.searchParams.delete("status");
      u.searchParams.delete("error");
      window.history.replaceState(null, "", u.toString());
    }
  }
})();
</script>`
}

// FilterScript re-fetches the page when the filter form settles for delay
// and swaps the #results region. Each fetch carries a sequence number and
// a response for an older one is ignored.
func FilterScript(formID string, delay time.Duration) templ.Component {
	id, _ := json.Marshal(formID)
	return templ.Raw(fmt.Sprintf(`<script>
(function () {
  var form = document.getElementById(%s);
  if (!form) return;
  var timer = null;
  var seq = 0;
  function load() {
    var mine = ++seq;
    var params = new URLSearchParams(new FormData(form));
    params.delete("page");
    var url = form.getAttribute("action") + "?" + params.toString();
    fetch(url, { headers: { "X-Requested-With": "fetch" }, credentials: "same-origin" })
      .then(function (r) { return r.text(); })
      .then(function (body) {
        if (mine !== seq) return;
        var doc = new DOMParser().parseFromString(body, "text/html");
        var fresh = doc.getElementById("results");
        var current = document.getElementById("results");
        if (fresh && current) current.replaceWith(fresh);
        if (window.injectCSRF) window.injectCSRF(document.getElementById("results"));
        window.history.replaceState(null, "", url);
      })
      .catch(function () {});
  }
  form.addEventListener("input", function (ev) {
    if (ev.target && ev.target.name === "size") return;
    clearTimeout(timer);
    timer = setTimeout(load, %d);
  });
  form.addEventListener("submit", function (ev) {
    ev.preventDefault();
    clearTimeout(timer);
    load();
  });
})();
</script>`, id, delay.Milliseconds()))
}

// FieldRule is the visibility of a conditional form field.
type FieldRule struct {
	Visible  bool `json:"visible"`
	Required bool `json:"required"`
}

// ConditionalFieldScript shows, hides and clears fieldID whenever
// selectName changes, following rules keyed by option value.
func ConditionalFieldScript(formID, selectName, fieldID string, rules map[string]FieldRule) templ.Component {
	args, _ := json.Marshal([]any{formID, selectName, fieldID, rules})
	return templ.Raw(fmt.Sprintf(`<script>
(function (args) {
  var form = document.getElementById(args[0]);
  if (!form) return;
  var select = form.querySelector("[name='" + args[1] + "']");
  var field = document.getElementById(args[2]);
  if (!select || !field) return;
  var input = field.querySelector("select, input");
  function apply() {
    var rule = args[3][select.value] || { visible: false, required: false };
    field.hidden = !rule.visible;
    if (!input) return;
    input.required = rule.required;
    if (!rule.visible) input.value = "";
  }
  select.addEventListener("change", apply);
  apply();
})(%s);
</script>`, args))
}

// ConfirmScript posts the form to endpoint when the confirmation field
// settles for delay and shows the returned field errors.
func ConfirmScript(formID, fieldName, endpoint string, delay time.Duration) templ.Component {
	args, _ := json.Marshal([]any{formID, fieldName, endpoint})
	return templ.Raw(fmt.Sprintf(`<script>
(function (args) {
  var form = document.getElementById(args[0]);
  if (!form) return;
  var input = form.querySelector("[name='" + args[1] + "']");
  if (!input) return;
  var hint = form.querySelector("[data-error-for='" + args[1] + "']");
  var timer = null;
  var seq = 0;
  function check() {
    var mine = ++seq;
    fetch(args[2], {
      method: "POST",
      headers: { "X-CSRF-Token": csrfToken(), "Accept": "application/json" },
      body: new URLSearchParams(new FormData(form)),
      credentials: "same-origin"
    })
      .then(function (r) { return r.json(); })
      .then(function (res) {
        if (mine !== seq) return;
        var msg = (res.errors && res.errors[args[1]]) || "";
        input.setAttribute("aria-invalid", msg ? "true" : "false");
        input.setCustomValidity(msg);
        if (hint) hint.textContent = msg;
      })
      .catch(function () {});
  }
  input.addEventListener("input", function () {
    clearTimeout(timer);
    timer = setTimeout(check, %d);
  });
})(%s);
</script>`, delay.Milliseconds(), args))
}
