/*
Project: NACOS Complaint System
Students file complaints, admins triage them from the portal.

apps/api     JSON API & section fragments (echo)
apps/portal  terminal portal (bubbletea) driven by client/navigation
apps/admin   database & user administration
*/
package nacos
