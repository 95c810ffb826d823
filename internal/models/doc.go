// Package models provides the elimination kinetics compared by kinlab.
//
// Each model implements [dynamo.System] for numerical integration and also
// offers its closed-form concentration curve and its rate law:
//
//   - [MichaelisMenten]: saturable elimination, v(C) = Vmax·C/(Km+C)
//   - [FirstOrder]: linear elimination, v(C) = k·C
//
// The Michaelis-Menten trajectory is the explicit solution of
// C + Km·ln(C/C0) = C0 − Vmax·t, expressed with the principal branch of
// the Lambert W function.
package models
