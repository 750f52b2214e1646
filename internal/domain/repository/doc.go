// Package repository define los contratos de persistencia del núcleo de
// identidad: cuentas (User) y códigos de verificación de un solo uso.
//
// Las implementaciones concretas viven en internal/store/{pg,redis,memory}.
//
// Convenciones:
//   - Context siempre es el primer parámetro
//   - Emails llegan ya normalizados (trim + lower) desde la capa de servicio
//   - Errores de dominio están en errors.go
package repository
