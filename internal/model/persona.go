package model

import "time"

// Persona is an identity record for travellers and reservation
// holders.  Passengers reference a persona once their data is loaded;
// until then the passenger row stays a placeholder.
//
// Fields:
//  ID              – primary key identifier.
//  Nombre          – first name(s).
//  Apellido        – surname(s).
//  NumeroDocumento – unique national document or passport number.
//  Telefono        – contact phone (nullable).
//  Email           – contact email (nullable).
//  FechaNacimiento – date of birth (nullable).
//  Activo          – soft-delete flag.
type Persona struct {
	ID              uint64     // Persona.id
	Nombre          string     // Persona.nombre
	Apellido        string     // Persona.apellido
	NumeroDocumento string     // Persona.numero_documento
	Telefono        *string    // Persona.telefono (nullable)
	Email           *string    // Persona.email (nullable)
	FechaNacimiento *time.Time // Persona.fecha_nacimiento (nullable)
	Activo          bool       // Persona.activo
	CreatedAt       time.Time  // Persona.fecha_creacion
}
