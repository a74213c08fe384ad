// Package actions implements the parts of the GitHub Actions runner contract
// a setup step needs: reading inputs, publishing outputs, extending PATH for
// later steps, and emitting workflow commands.
//
// Inputs arrive as INPUT_<NAME> environment variables. Outputs and PATH
// additions are appended to the files named by GITHUB_OUTPUT and GITHUB_PATH;
// on runners that predate those files the equivalent workflow commands are
// written to stdout instead.
package actions
