package main

// <constants>
const configJSONErrMsg = `could not serialize config JSON: %s`
const resultJSONErrMsg = `could not serialize result JSON: %s`

// </constants>

// <global-variables>
//   <subset purpose="top-level persistence-format flags, shared by every subcommand">
var argJSONOutput bool
var argBinaryOutput bool

//   </subset>
//   <subset purpose="used for passing values between kingpin command methods">
var w Output
var log Output

//   </subset>
// </global-variables>
