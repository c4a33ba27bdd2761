package resolver

// stdlibModules holds common standard-library top-level names. Not
// exhaustive; projects can extend it through the externals file.
var stdlibModules = map[string]bool{
	"abc": true, "argparse": true, "ast": true, "asyncio": true,
	"base64": true, "bisect": true, "builtins": true,
	"collections": true, "contextlib": true, "copy": true, "csv": true,
	"dataclasses": true, "datetime": true, "decimal": true, "dis": true,
	"enum": true, "functools": true, "gc": true, "glob": true,
	"hashlib": true, "heapq": true, "http": true, "importlib": true,
	"inspect": true, "io": true, "itertools": true, "json": true,
	"logging": true, "math": true, "multiprocessing": true, "os": true,
	"pathlib": true, "pickle": true, "platform": true, "queue": true,
	"random": true, "re": true, "shutil": true, "signal": true,
	"socket": true, "sqlite3": true, "string": true, "struct": true,
	"subprocess": true, "sys": true, "tempfile": true, "textwrap": true,
	"threading": true, "time": true, "timeit": true, "traceback": true,
	"typing": true, "unittest": true, "urllib": true, "uuid": true,
	"warnings": true, "weakref": true, "xml": true, "zipfile": true,
}
