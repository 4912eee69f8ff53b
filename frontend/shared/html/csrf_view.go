package html

// CSRFFormScript adds the _csrf field to POST forms from the X-CSRF-Token
// cookie and exposes csrfToken() for fetch calls.
func CSRFFormScript() string {
	return `<script>
function csrfToken() {
  var prefix = "X-CSRF-Token=";
  var parts = document.cookie ? document.cookie.split(";") : [];
  for (var i = 0; i < parts.length; i++) {
    var c = parts[i].trim();
    if (c.indexOf(prefix) === 0) return decodeURIComponent(c.substring(prefix.length));
  }
  return "";
}
(function () {
  function inject(root) {
    var token = csrfToken();
    if (!token) return;
    var forms = (root || document).querySelectorAll("form");
    for (var i = 0; i < forms.length; i++) {
      var form = forms[i];
      if ((form.getAttribute("method") || "GET").toUpperCase() !== "POST") continue;
      if (form.querySelector("input[name='_csrf']")) continue;
      var input = document.createElement("input");
      input.type = "hidden";
      input.name = "_csrf";
      input.value = token;
      form.appendChild(input);
    }
  }
  window.injectCSRF = inject;
  if (document.readyState === "loading") {
    document.addEventListener("DOMContentLoaded", function () { inject(); });
  } else {
    inject();
  }
})();
</script>`
}
