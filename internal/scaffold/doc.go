// Package scaffold renders the project skeletons embedded in the binary.
// Files ending in .tmpl are executed with text/template; everything else is
// copied verbatim.
package scaffold
